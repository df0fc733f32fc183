package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/google/shlex"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"its-hmny.dev/perchance/pkg/interpreter"
	"its-hmny.dev/perchance/pkg/loader"
	"its-hmny.dev/perchance/pkg/trace"
)

// isInteractive reports whether stdin looks like a terminal rather than a
// pipe, the condition under which dropping into the REPL (instead of
// reading one generator from stdin and exiting) makes sense.
func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// runREPL re-evaluates source on every Enter, honoring a small set of
// `:`-prefixed commands parsed with shlex so quoted arguments (e.g.
// `:import-dir "my generators"`) behave the way a shell would.
func runREPL(source, name string, cfg Config) error {
	tmpl, err := interpreter.CompileTemplate(source, name)
	if err != nil {
		return errors.Wrap(err, "compiling generator")
	}

	var seed *int64
	tracing := false
	importDir := cfg.ImportDir

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("perchance interactive mode -- Enter to re-render, :help for commands, :quit to exit")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return nil
		}
		line := scanner.Text()
		fields, err := shlex.Split(line)
		if err != nil {
			fmt.Printf("error: %s\n", err)
			continue
		}

		if len(fields) == 0 {
			render(tmpl, seed, tracing, importDir)
			continue
		}

		switch fields[0] {
		case ":quit", ":exit":
			return nil
		case ":help":
			fmt.Println(":seed N       fix the random seed\n:seed clear   go back to random seeds\n:trace on|off toggle the evaluation trace\n:import-dir D set the folder imports resolve against\n:quit         leave")
		case ":seed":
			if len(fields) < 2 || fields[1] == "clear" {
				seed = nil
				continue
			}
			n, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				fmt.Printf("error: invalid seed %q\n", fields[1])
				continue
			}
			seed = &n
		case ":trace":
			tracing = len(fields) >= 2 && fields[1] == "on"
		case ":import-dir":
			if len(fields) >= 2 {
				importDir = fields[1]
			}
		default:
			fmt.Printf("unknown command %q, try :help\n", fields[0])
		}
	}
}

func render(tmpl *interpreter.Template, seed *int64, tracing bool, importDir string) {
	opts := []interpreter.Option{}
	if seed != nil {
		opts = append(opts, interpreter.WithSeed(*seed))
	}
	if tracing {
		opts = append(opts, interpreter.WithTrace())
	}
	if importDir != "" {
		opts = append(opts, interpreter.WithLoader(loader.NewCachingLoader(loader.NewFolderLoader(importDir))))
	}

	out, node, err := tmpl.EvaluateOpts(context.Background(), opts...)
	if err != nil {
		fmt.Printf("error: %s\n", err)
		return
	}
	fmt.Println(out)
	if tracing && node != nil {
		printTrace(node, 0)
	}
}

func printTrace(node *trace.Node, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	label := node.Label
	if label == "" {
		label = string(node.Operation)
	}
	fmt.Printf("%s%s -> %q\n", indent, label, node.Result)
	for _, child := range node.Children {
		printTrace(child, depth+1)
	}
}
