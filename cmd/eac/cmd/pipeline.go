package cmd

import (
	"os"

	"github.com/pkg/errors"

	"github.com/eac-lang/eac/internal/ast"
	"github.com/eac-lang/eac/internal/checker"
	"github.com/eac-lang/eac/internal/ir"
	"github.com/eac-lang/eac/internal/keyword"
	"github.com/eac-lang/eac/internal/lexer"
	"github.com/eac-lang/eac/internal/lower"
	"github.com/eac-lang/eac/internal/parser"
)

// parseFile runs the lexer and parser over path's contents.
func parseFile(path string) (*ast.Program, error) {
	if err := loadKeywords(); err != nil {
		return nil, errors.Wrapf(err, "loading keyword document %s", keywordsPath)
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	toks, err := lexer.New(string(source), path, keyword.Table()).All()
	if err != nil {
		return nil, errors.Wrap(err, "lexing")
	}
	prog, err := parser.ParseProgram(toks, path)
	if err != nil {
		return nil, errors.Wrap(err, "parsing")
	}
	return prog, nil
}

// checkFile parses path and runs the static checker over the result.
func checkFile(path string) (*ast.Program, error) {
	prog, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	if err := checker.Check(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

// lowerFile parses, checks, and lowers path to IR.
func lowerFile(path string) (*ir.Program, error) {
	prog, err := checkFile(path)
	if err != nil {
		return nil, err
	}
	return lower.Lower(prog), nil
}
