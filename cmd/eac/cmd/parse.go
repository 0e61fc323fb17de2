package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Parse a source file and print its statement count",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			_ = cmd.Help()
			return fmt.Errorf("expected exactly one FILE argument")
		}
		prog, err := parseFile(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%d statements\n", len(prog.Statements))
		return nil
	},
}
