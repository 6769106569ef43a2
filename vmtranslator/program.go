package vmtranslator

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// A vm program is either a single `X.vm` file, translated to `X.asm` next to it, or a
// directory holding several `.vm` files, translated together to `<dir>/<dir>.asm`. Every
// file keeps its own static namespace, named after its base name.

type BootstrapMode int

const (
	// BootstrapAuto writes the bootstrap code for directories only.
	BootstrapAuto BootstrapMode = iota
	BootstrapAlways
	BootstrapNever
)

const vmExt = ".vm"

// TranslateReader translates one vm file into w. Syntax errors are collected so every
// bad line gets reported; a command which cannot be translated stops the file.
func (translator *Translator) TranslateReader(rd io.Reader, w io.Writer) error {
	parser := NewParser(translator.fileName)
	reader := bufio.NewReader(rd)
	var errs []error
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if len(line) > 0 {
			cmd, perr := parser.ParseLine(line)
			if perr != nil {
				errs = append(errs, perr)
			} else if cmd != nil {
				code, terr := translator.Translate(cmd)
				if terr != nil {
					errs = append(errs, fmt.Errorf("%s:%d: %w", translator.fileName, parser.Line(), terr))
					return errors.Join(errs...)
				}
				if _, werr := io.WriteString(w, code); werr != nil {
					return werr
				}
			}
		}
		if err == io.EOF {
			break
		}
	}
	return errors.Join(errs...)
}

// TranslatePath translates a file or a directory and returns the assemble code.
func (translator *Translator) TranslatePath(path string, mode BootstrapMode) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	var files []string
	if info.IsDir() {
		files, err = listVMFiles(path)
		if err != nil {
			return "", err
		}
		if len(files) == 0 {
			return "", fmt.Errorf("no %s file found in %s", vmExt, path)
		}
	} else {
		if filepath.Ext(path) != vmExt {
			return "", fmt.Errorf("%s is not a %s file", path, vmExt)
		}
		files = []string{path}
	}
	var output strings.Builder
	if mode == BootstrapAlways || (mode == BootstrapAuto && info.IsDir()) {
		output.WriteString(translator.Bootstrap())
	}
	var errs []error
	for _, file := range files {
		if err := translator.translateFile(file, &output); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return output.String(), nil
}

func (translator *Translator) translateFile(path string, w io.Writer) error {
	translator.SetFileName(strings.TrimSuffix(filepath.Base(path), vmExt))
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return translator.TranslateReader(f, w)
}

// listVMFiles returns the .vm files of dir, sorted by name. Sub directories are ignored.
func listVMFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != vmExt {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

// OutputPath maps `X.vm` to `X.asm` and a directory `D` to `D/D.asm`.
func OutputPath(path string, isDir bool) string {
	if isDir {
		clean := filepath.Clean(path)
		return filepath.Join(clean, filepath.Base(clean)+".asm")
	}
	return strings.TrimSuffix(path, vmExt) + ".asm"
}

// TranslateProgram translates path and saves the result. It returns where the
// assemble code was written. Nothing is written when any file fails.
func TranslateProgram(path, output string, mode BootstrapMode) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	code, err := NewTranslator("").TranslatePath(path, mode)
	if err != nil {
		return "", err
	}
	if output == "" {
		output = OutputPath(path, info.IsDir())
	}
	if err := os.WriteFile(output, []byte(code), 0666); err != nil {
		return "", err
	}
	return output, nil
}
