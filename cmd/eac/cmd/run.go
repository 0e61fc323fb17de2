package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eac-lang/eac/internal/interp"
	"github.com/eac-lang/eac/internal/webstub"
	"github.com/eac-lang/eac/internal/xlsx"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run FILE",
	Short: "Parse, check, lower, and execute a source file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			_ = cmd.Help()
			return fmt.Errorf("expected exactly one FILE argument")
		}
		path := args[0]
		prog, err := lowerFile(path)
		if err != nil {
			return err
		}

		reg := interp.NewRegistry()
		xlsx.NewAdapter().Register(reg)
		webstub.NewAdapter().Register(reg)

		tracePath := strings.TrimSuffix(path, filepath.Ext(path)) + ".trace.jsonl"
		trace, err := interp.Run(prog, reg, interp.Options{
			DryRun:    dryRun,
			TracePath: tracePath,
			Logger:    logger,
		})
		if err != nil {
			return err
		}
		fmt.Printf("%d steps completed\n", len(trace))
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "log steps without invoking tools")
}
