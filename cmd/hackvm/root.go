package main

import (
	"io"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/xiaobogaga/hackvm/isa"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "hackvm",
	Short: "Hack vm translator, assembler and cpu emulator",
	Long: `hackvm works on the three layers of the hack platform:

  translate  turns a .vm file or a directory of .vm files into hack assemble code
  asm        turns hack assemble code into .hack machine code
  run        executes a program of any of these forms on the cpu emulator
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "dump programs, symbols and cpu state")
}

// dumper prints debug dumps to stderr, without colors when stderr is not a terminal.
func dumper(w io.Writer) *pp.PrettyPrinter {
	printer := pp.New()
	printer.SetOutput(w)
	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		printer.SetColoringEnabled(false)
	}
	return printer
}

// dumpProgram prints one resolved instruction per line with its address.
func dumpProgram(w io.Writer, prog []isa.Instruction) {
	lines := make([]string, len(prog))
	for pc, ins := range prog {
		lines[pc] = ins.String()
	}
	dumper(w).Println(lines)
}
