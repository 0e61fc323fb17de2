package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"github.com/eac-lang/eac/internal/ir"
)

var explainRepr bool

var explainCmd = &cobra.Command{
	Use:   "explain FILE",
	Short: "Parse, check, and lower a source file, printing each IR step in human-readable form",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			_ = cmd.Help()
			return fmt.Errorf("expected exactly one FILE argument")
		}
		prog, err := lowerFile(args[0])
		if err != nil {
			return err
		}
		if explainRepr {
			repr.Println(prog)
			return nil
		}
		for _, step := range prog.Steps {
			explainStep(step, 0)
		}
		return nil
	},
}

// explainStep prints one step, formatted by its op prefix
// (excel.*/table.*/web.*/control.*), matching the original CLI's
// per-prefix rendering instead of a single generic dump.
func explainStep(step *ir.Step, depth int) {
	indent := strings.Repeat("  ", depth)
	args := formatArgs(step.Args)
	result := ""
	if step.Result != "" {
		result = fmt.Sprintf(" -> %s", step.Result)
	}

	prefix := strings.SplitN(step.Op, ".", 2)[0]
	switch prefix {
	case "excel":
		fmt.Printf("%s[%s] spreadsheet: %s(%s)%s\n", indent, step.ID, step.Op, args, result)
	case "table":
		fmt.Printf("%s[%s] table op: %s(%s)%s\n", indent, step.ID, step.Op, args, result)
	case "web":
		fmt.Printf("%s[%s] web automation: %s(%s)%s\n", indent, step.ID, step.Op, args, result)
	case "control":
		fmt.Printf("%s[%s] control: %s(%s)\n", indent, step.ID, step.Op, args)
		if body, ok := step.Args["body"]; ok {
			for _, inner := range body.Body {
				explainStep(inner, depth+1)
			}
		}
	default:
		fmt.Printf("%s[%s] %s(%s)%s\n", indent, step.ID, step.Op, args, result)
	}
}

func formatArgs(args map[string]ir.Value) string {
	names := make([]string, 0, len(args))
	for k := range args {
		names = append(names, k)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		if name == "body" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", name, formatValue(args[name])))
	}
	return strings.Join(parts, ", ")
}

func formatValue(v ir.Value) string {
	if raw, ok := v.RawValue(); ok {
		return fmt.Sprintf("%v", raw)
	}
	switch v.Type {
	case "ref":
		return v.Name
	case "qualified":
		return v.Base + "." + v.Field
	case "money":
		return v.Currency + " " + v.Amount
	case "comparison", "binary":
		return formatValue(*v.Left) + " " + v.Op + " " + formatValue(*v.Right)
	case "not":
		return "not " + formatValue(*v.Expr)
	case "unknown":
		return "?"
	default:
		return v.Number
	}
}

func init() {
	explainCmd.Flags().BoolVar(&explainRepr, "repr", false, "print the IR program's Go struct tree instead of the human-readable form")
}
