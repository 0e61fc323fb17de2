// Package cmd implements the eac CLI: parse, check, lower, run, explain,
// and trace subcommands over the english-as-code pipeline.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eac-lang/eac/internal/keyword"
)

var (
	rootCmd = &cobra.Command{
		Use:          "eac",
		Short:        "eac",
		SilenceUsage: true,
		Long:         `Compiler and interpreter for the controlled-English spreadsheet/web-automation language.`,
	}

	keywordsPath string
	logger       = logrus.StandardLogger()
)

// Execute wires persistent flags and runs the selected subcommand.
func Execute() error {
	rootCmd.PersistentFlags().StringVarP(&keywordsPath, "keywords", "k", "", "path to an alternate keyword document (YAML)")
	return rootCmd.Execute()
}

// loadKeywords installs the keyword table exactly once per process, from
// keywordsPath if set, otherwise falling back to the built-in minimum.
func loadKeywords() error {
	if keywordsPath == "" {
		keyword.Table()
		return nil
	}
	return keyword.LoadFile(keywordsPath)
}

func init() {
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(lowerCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(traceCmd)
}
