package interp

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/eac-lang/eac/internal/ir"
	"github.com/eac-lang/eac/internal/lower"
)

// TraceEntry is one recorded step execution, matching the trace file
// format: {id, op, args, result?, dry_run?}.
type TraceEntry struct {
	ID     string         `json:"id"`
	Op     string         `json:"op"`
	Args   map[string]any `json:"args"`
	Result any            `json:"result,omitempty"`
	DryRun bool           `json:"dry_run,omitempty"`
}

// Options configures a Run call.
type Options struct {
	DryRun    bool
	TracePath string
	Logger    logrus.FieldLogger
}

// Run executes prog.Steps in order against registry and returns the trace
// accumulated up to the first fatal error (if any). The environment is
// created empty and discarded at the end of the call.
func Run(prog *ir.Program, registry ToolRegistry, opts Options) ([]TraceEntry, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	runID := uuid.New().String()
	env := make(Env)

	var trace []TraceEntry
	var openWorkbooks []string

	// On every exit path, each workbook handle acquired during this run is
	// logged at debug level. The handles are not closed or removed from the
	// tool adapter that minted them.
	defer func() {
		for _, handle := range openWorkbooks {
			logger.WithFields(logrus.Fields{"run_id": runID, "workbook": handle}).Debug("releasing workbook handle")
		}
	}()

	run := &runner{
		registry: registry,
		opts:     opts,
		logger:   logger,
		runID:    runID,
		track:    func(handle string) { openWorkbooks = append(openWorkbooks, handle) },
	}

	for _, step := range prog.Steps {
		entries, err := run.execStep(step, env)
		trace = append(trace, entries...)
		if err != nil {
			writeTrace(opts.TracePath, trace)
			return trace, err
		}
	}

	if err := writeTrace(opts.TracePath, trace); err != nil {
		return trace, err
	}
	return trace, nil
}

type runner struct {
	registry ToolRegistry
	opts     Options
	logger   logrus.FieldLogger
	runID    string
	track    func(handle string)
}

// execStep executes one step (and, for control.for_each, its nested body
// steps) and returns every trace entry it produced.
func (r *runner) execStep(step *ir.Step, env Env) ([]TraceEntry, error) {
	args := resolveArgs(step.Args, env)

	if step.Op == "control.for_each" {
		return r.execForEach(step, args, env)
	}

	if strings.HasPrefix(step.Op, "table.") {
		substituteTableArg(args, env)
	}
	if step.Op == "excel.read_table" {
		if handle, ok := env[lower.CurrentWorkbookEnvKey]; ok {
			args["workbook"] = handle
		}
	}
	if step.Op == "excel.export" {
		substituteSourceArg(args, env)
	}

	if r.opts.DryRun {
		entry := TraceEntry{ID: step.ID, Op: step.Op, Args: args, DryRun: true}
		r.logger.WithFields(logrus.Fields{"run_id": r.runID, "step_id": step.ID, "op": step.Op}).Debug("dry-run step")
		return []TraceEntry{entry}, nil
	}

	result, err := r.dispatch(step, args, env)
	if err != nil {
		return nil, err
	}
	if step.Result != "" {
		env[step.Result] = result
		if step.Op == "excel.open_workbook" {
			if handle, ok := result.(string); ok {
				r.track(handle)
			}
		}
	}

	return []TraceEntry{{ID: step.ID, Op: step.Op, Args: args, Result: result}}, nil
}

// dispatch runs one non-loop step: set_var and call_result are handled by
// the interpreter itself; everything else goes to the
// registry.
func (r *runner) dispatch(step *ir.Step, args map[string]any, env Env) (any, error) {
	switch step.Op {
	case "set_var":
		return args["value"], nil
	case "call_result":
		name, _ := args["name"].(string)
		return env[name], nil
	default:
		if !r.registry.Has(step.Op) {
			return nil, &RuntimeError{StepID: step.ID, Op: step.Op, Message: "unknown operation"}
		}
		r.logger.WithFields(logrus.Fields{"run_id": r.runID, "step_id": step.ID, "op": step.Op}).Debug("executing step")
		result, err := r.registry.Call(step.Op, args)
		if err != nil {
			r.logger.WithFields(logrus.Fields{"run_id": r.runID, "step_id": step.ID, "op": step.Op}).WithError(err).Error("tool call failed")
			return nil, &HostError{StepID: step.ID, Op: step.Op, Err: err}
		}
		return result, nil
	}
}

// execForEach iterates the resolved
// collection, binding var to each element as a row-object and running the
// body steps through the same per-step procedure, in order. No trace entry
// is emitted for the loop wrapper itself.
func (r *runner) execForEach(step *ir.Step, args map[string]any, env Env) ([]TraceEntry, error) {
	varName, _ := args["var"].(string)
	if varName == "" {
		varName = "row"
	}

	collection, ok := args["collection"].(Table)
	if !ok {
		// Accept a generic []Row-shaped slice from hosts that hand back
		// a bare []any of row-objects.
		if generic, okGeneric := args["collection"].([]any); okGeneric {
			var tbl Table
			for _, el := range generic {
				if row, okRow := el.(Row); okRow {
					tbl = append(tbl, row)
				}
			}
			collection = tbl
			ok = true
		}
	}
	if !ok {
		return nil, &RuntimeError{StepID: step.ID, Op: step.Op, Message: "collection did not resolve to a table"}
	}

	bodyIR := stepArgBody(step)

	var entries []TraceEntry
	for _, row := range collection {
		env[varName] = row
		for _, bodyStep := range bodyIR {
			sub, err := r.execStep(bodyStep, env)
			entries = append(entries, sub...)
			if err != nil {
				delete(env, varName)
				return entries, err
			}
		}
	}
	delete(env, varName)
	return entries, nil
}

// stepArgBody extracts the nested []*ir.Step stored under a
// control.for_each step's "body" arg.
func stepArgBody(step *ir.Step) []*ir.Step {
	v, ok := step.Args["body"]
	if !ok {
		return nil
	}
	return v.Body
}

// substituteTableArg handles table.* ops:
// args["table"] names an env table, substitute the table value itself.
func substituteTableArg(args map[string]any, env Env) {
	name, ok := args["table"].(string)
	if !ok {
		return
	}
	if tbl, ok := env[name].(Table); ok {
		args["table"] = tbl
	}
}

// substituteSourceArg mirrors substituteTableArg for excel.export.source,
// for excel.export's source arg.
func substituteSourceArg(args map[string]any, env Env) {
	name, ok := args["source"].(string)
	if !ok {
		return
	}
	if tbl, ok := env[name].(Table); ok {
		args["source"] = tbl
	}
}

func writeTrace(path string, trace []TraceEntry) error {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("opening trace file %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for _, entry := range trace {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("writing trace entry %s: %w", entry.ID, err)
		}
	}
	return nil
}
