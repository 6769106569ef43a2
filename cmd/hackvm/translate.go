package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xiaobogaga/hackvm/vmtranslator"
)

var (
	translateOutput string
	bootstrap       string
)

var translateCmd = &cobra.Command{
	Use:   "translate path",
	Short: "Translate hack vm code to hack assemble code",
	Long: `Translate a single X.vm file to X.asm, or a directory D holding .vm files
to D/D.asm. Every file gets its own static namespace named after its base name.

The bootstrap code sets SP to 256 and calls Sys.init. By default it is written
for directories only.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := parseBootstrapMode(bootstrap)
		if err != nil {
			return err
		}
		output, err := vmtranslator.TranslateProgram(args[0], translateOutput, mode)
		if err != nil {
			return fmt.Errorf("failed to translate program %s: %w", args[0], err)
		}
		log.Printf("translated %s to %s", args[0], output)
		if verbose {
			code, err := os.ReadFile(output)
			if err != nil {
				return err
			}
			fmt.Print(string(code))
		}
		return nil
	},
}

func init() {
	translateCmd.Flags().StringVarP(&translateOutput, "output", "o", "", "the saved path, X.asm or D/D.asm by default")
	addBootstrapFlag(translateCmd.Flags())
	rootCmd.AddCommand(translateCmd)
}

func addBootstrapFlag(flags *pflag.FlagSet) {
	flags.StringVar(&bootstrap, "bootstrap", "auto", "write the bootstrap code: auto, always or never")
}

func parseBootstrapMode(s string) (vmtranslator.BootstrapMode, error) {
	switch s {
	case "auto":
		return vmtranslator.BootstrapAuto, nil
	case "always":
		return vmtranslator.BootstrapAlways, nil
	case "never":
		return vmtranslator.BootstrapNever, nil
	}
	return 0, fmt.Errorf("invalid bootstrap mode %q, want auto, always or never", s)
}
