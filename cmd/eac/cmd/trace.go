package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var traceCmd = &cobra.Command{
	Use:   "trace FILE",
	Short: "Print a previously recorded trace file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			_ = cmd.Help()
			return fmt.Errorf("expected exactly one FILE argument")
		}
		f, err := os.Open(args[0])
		if err != nil {
			if os.IsNotExist(err) {
				return errors.Errorf("no trace file at %s", args[0])
			}
			return errors.Wrapf(err, "opening %s", args[0])
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			fmt.Println(scanner.Text())
		}
		return scanner.Err()
	},
}
