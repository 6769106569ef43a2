package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xiaobogaga/hackvm/assembler"
	"github.com/xiaobogaga/hackvm/isa"
)

var (
	asmOutput string
	variables bool
)

var asmCmd = &cobra.Command{
	Use:   "asm file.asm",
	Short: "Assemble hack assemble code to .hack machine code",
	Long: `Assemble a hack assemble code file to one 16 bit binary word per line.

A symbol which is neither predefined nor a declared label is an error unless
--vars is given, which allocates such symbols from address 16.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		asm, prog, err := assembleFile(path, variables)
		if err != nil {
			return err
		}
		if verbose {
			dumpProgram(os.Stderr, prog)
			dumper(os.Stderr).Println(asm.Symbols())
		}
		output := asmOutput
		if output == "" {
			output = strings.TrimSuffix(path, filepath.Ext(path)) + ".hack"
		}
		if err := saveMachineCode(output, prog); err != nil {
			return fmt.Errorf("failed to save to path: %s, err: %w", output, err)
		}
		log.Printf("assembled %d instructions to %s", len(prog), output)
		return nil
	},
}

func init() {
	asmCmd.Flags().StringVarP(&asmOutput, "output", "o", "", "the output .hack path, next to the input by default")
	addVariablesFlag(asmCmd.Flags())
	rootCmd.AddCommand(asmCmd)
}

func addVariablesFlag(flags *pflag.FlagSet) {
	flags.BoolVar(&variables, "vars", false, "allocate unknown symbols as variables from address 16")
}

func assembleFile(path string, withVariables bool) (*assembler.Assembler, []isa.Instruction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	asm := assembler.NewAssembler(filepath.Base(path))
	if withVariables {
		asm.EnableVariables()
	}
	prog, err := asm.Parse(f)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	return asm, prog, nil
}

func saveMachineCode(path string, prog []isa.Instruction) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := assembler.WriteMachineCode(f, prog); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
