// Command pegvm drives the engine's worked grammars from the command
// line, in the same spirit as tef/ez/cmd/ez/ez.go's "build a parser,
// Accept a few inputs, report pass/fail" main — generalized to pick a
// grammar by name and to surface the trace stream via -trace instead of
// hard-coding one fixed grammar.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tef/pegvm"
	"github.com/tef/pegvm/examples/indent"
	"github.com/tef/pegvm/examples/json"
	"github.com/tef/pegvm/examples/treebuilder"
)

func main() {
	grammarName := flag.String("grammar", "json", "grammar to run: json, indent, treebuilder")
	trace := flag.Bool("trace", false, "print the diagnostic trace stream to stderr")
	quiet := flag.String("quiet", "", "comma-separated list of trace-quiet rule names")
	flag.Parse()

	input, err := readInput(flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "pegvm:", err)
		os.Exit(1)
	}

	if err := run(*grammarName, input, *trace, *quiet); err != nil {
		fmt.Fprintln(os.Stderr, "pegvm:", err)
		os.Exit(1)
	}
}

func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(b), nil
}

func run(grammarName, input string, trace bool, quiet string) error {
	cfg := &pegvm.Config{Trace: trace, TraceOut: os.Stderr}
	if quiet != "" {
		cfg.Quiet = strings.Split(quiet, ",")
	}

	switch grammarName {
	case "json":
		v, err := json.DecodeWithConfig(input, cfg)
		if err != nil {
			return err
		}
		fmt.Printf("decoded: %#v\n", v)
	case "indent":
		ok, err := indent.ParseWithConfig(input, cfg)
		if err != nil {
			return err
		}
		fmt.Println("matched:", ok)
	case "treebuilder":
		node, err := treebuilder.ParseWithConfig(input, cfg)
		if err != nil {
			return err
		}
		node.Walk(func(n *treebuilder.Node) {
			fmt.Printf("%s: %q\n", n.Name, n.Text)
		})
	default:
		return fmt.Errorf("unknown grammar %q (want json, indent, or treebuilder)", grammarName)
	}
	return nil
}
