// Command holog is the reference driver for the holog solver library: it
// wires the core's option parser to process flags, loads a small embedded
// demonstration program built directly against the term API (this
// package has no surface-syntax parser of its own — compiling program
// text into Terms is a host concern, kept separate via the
// Quotations/external-parser split), and runs one query against it,
// printing every solution until the user declines to see more.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/hashicorp/cli"
	"github.com/holog-lang/holog/pkg/holog"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run implements cli.Command's Run signature directly rather than through
// cli.NewCLI's subcommand dispatch: this driver exposes one operation, so
// a subcommand router would only add ceremony. hashicorp/cli's Command
// and Ui types are still used for their flag-and-output plumbing, per
// SPEC_FULL.md's ambient-stack choice for the CLI concern.
func run(args []string) int {
	cmd := &demoCommand{ui: &cli.BasicUi{
		Reader:      os.Stdin,
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
	}}
	return cmd.Run(args)
}

type demoCommand struct {
	ui cli.Ui
}

var _ cli.Command = (*demoCommand)(nil)

func (c *demoCommand) Synopsis() string {
	return "Run the embedded append/3 demonstration query"
}

func (c *demoCommand) Help() string {
	return `Usage: holog [options]

  Loads a small built-in append/3 program and solves
  "append(X, Y, [1,2,3])", printing each solution in turn. After each
  solution, press Enter to see the next one or anything else to stop.

Options:

  -trace                   Raise solver logging to Debug level on stderr;
                            per-goal tracer events log at Trace level and
                            are not shown.
  -delay-outside-fragment  Delay (rather than error on) unification outside
                            the higher-order pattern fragment.
  -max-steps N              Abort the query after N goal-dispatch steps
                            (0 = unlimited, the default).
  -document-builtins        Require every registered built-in to carry a
                            non-empty doc string; fail fast otherwise.

  Flags this driver does not recognise are ignored rather than rejected,
  so an embedder layering its own flags over this one can share argv.
`
}

func (c *demoCommand) Run(args []string) int {
	opts := holog.DefaultOptions()
	fs := flag.NewFlagSet("holog", flag.ContinueOnError)
	bui := c.ui.(*cli.BasicUi)
	fs.SetOutput(bui.ErrorWriter)
	fs.BoolVar(&opts.Trace, "trace", opts.Trace, "raise solver logging to Debug level")
	fs.BoolVar(&opts.DelayOutsideFragment, "delay-outside-fragment", opts.DelayOutsideFragment, "delay instead of erroring outside the pattern fragment")
	fs.Int64Var(&opts.MaxSteps, "max-steps", opts.MaxSteps, "abort a query after N goal-dispatch steps (0 = unlimited)")
	fs.BoolVar(&opts.DocumentBuiltins, "document-builtins", opts.DocumentBuiltins, "require every built-in to carry a doc string")
	fs.Usage = func() { c.ui.Error(c.Help()) }
	// Unknown flags are skipped instead of aborting the run; they are not
	// collected or passed on anywhere.
	if err := parsePassthrough(fs, args); err != nil {
		return 2
	}

	in, err := holog.New(opts, nil)
	if err != nil {
		c.ui.Error(fmt.Sprintf("failed to initialize interpreter: %v", err))
		return 2
	}

	goal, err := loadAppendDemo(in)
	if err != nil {
		c.ui.Error(fmt.Sprintf("failed to load demonstration program: %v", err))
		return 1
	}

	return c.runQuery(in, goal)
}

// parsePassthrough runs fs over args, tolerating unrecognised flags by
// dropping just the offending token and retrying, rather than failing the
// whole parse.
func parsePassthrough(fs *flag.FlagSet, args []string) error {
	remaining := args
	for {
		err := fs.Parse(remaining)
		if err == nil {
			return nil
		}
		if len(remaining) == 0 {
			return err
		}
		// fs.Parse has already consumed the offending token; resume with
		// whatever it left unparsed.
		if rest := fs.Args(); len(rest) < len(remaining) {
			remaining = rest
		} else {
			remaining = remaining[1:]
		}
	}
}

// loadAppendDemo builds the classic append/3 relation directly against the
// term API and returns the query goal append(X, Y, [1,2,3]), with X and Y
// left as fresh top-level uvars so their bindings are visible in each
// printed solution.
func loadAppendDemo(in *holog.Interpreter) (*holog.Term, error) {
	appendSym := in.Symbols.Intern("append")

	// append([], L, L).
	baseHead := holog.MkApp(appendSym, holog.Nil(), holog.MkConst(0), holog.MkConst(0))
	if err := in.Clauses.Insert(&holog.Clause{Name: "append/base", NumVars: 1, Head: baseHead}, holog.InsertEnd, ""); err != nil {
		return nil, err
	}

	// append([H|T], L, [H|R]) :- append(T, L, R).
	// Own variables, outermost levels: H=0, T=1, L=2, R=3.
	recHead := holog.MkApp(appendSym,
		holog.MkCons(holog.MkConst(0), holog.MkConst(1)),
		holog.MkConst(2),
		holog.MkCons(holog.MkConst(0), holog.MkConst(3)))
	recBody := holog.MkApp(appendSym, holog.MkConst(1), holog.MkConst(2), holog.MkConst(3))
	if err := in.Clauses.Insert(&holog.Clause{Name: "append/rec", NumVars: 4, Head: recHead, Body: recBody}, holog.InsertEnd, ""); err != nil {
		return nil, err
	}

	list123 := holog.MkCons(holog.MkInt(in.CData, 1),
		holog.MkCons(holog.MkInt(in.CData, 2),
			holog.MkCons(holog.MkInt(in.CData, 3), holog.Nil())))

	x := in.NewQueryVar()
	y := in.NewQueryVar()
	return holog.MkApp(appendSym, x, y, list123), nil
}

func (c *demoCommand) runQuery(in *holog.Interpreter, goal *holog.Term) int {
	scanner := bufio.NewScanner(os.Stdin)
	n := 0
	found, err := in.RunQuery(goal, func(in *holog.Interpreter) (bool, error) {
		n++
		c.ui.Output(fmt.Sprintf("solution %d: %s", n, goal.String()))
		c.ui.Output("more? (Enter for yes, anything else for no) ")
		if !scanner.Scan() {
			return false, nil
		}
		return scanner.Text() == "", nil
	})
	if halt, ok := err.(*holog.HaltSignal); ok {
		return halt.Code
	}
	switch {
	case err == holog.ErrNoMoreSteps:
		c.ui.Warn("max_steps exceeded")
		return 1
	case err != nil:
		c.ui.Error(err.Error())
		return 1
	case !found:
		c.ui.Output("no solutions.")
		return 1
	}
	return 0
}
