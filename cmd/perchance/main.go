package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/teris-io/cli"

	"its-hmny.dev/perchance/pkg/interpreter"
	"its-hmny.dev/perchance/pkg/loader"
)

var description = strings.ReplaceAll(`
perchance renders declarative, weighted-random text generators: a tree of
named lists, each a set of weighted alternatives that can reference other
lists, carry embedded expressions, and import other generators by name.
`, "\n", " ")

var app = cli.New(description).
	WithArg(cli.NewArg("input", "Generator source file (reads stdin if omitted)").
		AsOptional().WithType(cli.TypeString)).
	WithOption(cli.NewOption("output", "Write rendered output here instead of stdout").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("seed", "Fix the random seed for reproducible output").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("count", "Render this many times (default 1)").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("import-dir", "Directory `{import:name}` references resolve against").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("trace", "Print the evaluation trace alongside the output").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("validate", "Only check the generator for errors, don't render it").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("config", "Path to a config file (default: XDG config dir)").
		WithType(cli.TypeString)).
	WithOption(cli.NewOption("verbose", "Print diagnostic logging to stderr").
		WithType(cli.TypeBool)).
	WithOption(cli.NewOption("repl", "Enter interactive mode after loading the generator").
		WithType(cli.TypeBool)).
	WithAction(handle)

func handle(args []string, options map[string]string) int {
	logLevel := slog.LevelWarn
	if _, ok := options["verbose"]; ok {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(options["config"])
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return -1
	}
	if dir, ok := options["import-dir"]; ok {
		cfg.ImportDir = dir
	}

	var name string
	var source string
	if len(args) >= 1 {
		name = args[0]
		data, err := os.ReadFile(name)
		if err != nil {
			fmt.Printf("ERROR: %s\n", errors.Wrapf(err, "reading %q", name))
			return -1
		}
		source = string(data)
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Printf("ERROR: %s\n", errors.Wrap(err, "reading stdin"))
			return -1
		}
		source = string(data)
		name = "stdin"
	}

	if _, ok := options["repl"]; ok && isInteractive() {
		if err := runREPL(source, name, cfg); err != nil {
			fmt.Printf("ERROR: %s\n", err)
			return -1
		}
		return 0
	}

	if _, ok := options["validate"]; ok {
		diags := interpreter.ValidateTemplate(source)
		if len(diags) == 0 {
			fmt.Println("ok")
			return 0
		}
		printDiagnostics(source, diags)
		return 1
	}

	tmpl, err := interpreter.CompileTemplate(source, name)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		return -1
	}

	evalOpts := []interpreter.Option{}
	if s, ok := options["seed"]; ok {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			fmt.Printf("ERROR: invalid --seed %q\n", s)
			return -1
		}
		evalOpts = append(evalOpts, interpreter.WithSeed(n))
	}
	if _, ok := options["trace"]; ok {
		evalOpts = append(evalOpts, interpreter.WithTrace())
	}
	if cfg.ImportDir != "" {
		evalOpts = append(evalOpts, interpreter.WithLoader(loader.NewCachingLoader(loader.NewFolderLoader(cfg.ImportDir))))
	}

	out := os.Stdout
	if path, ok := options["output"]; ok {
		f, err := os.Create(path)
		if err != nil {
			fmt.Printf("ERROR: %s\n", errors.Wrapf(err, "creating %q", path))
			return -1
		}
		defer f.Close()
		out = f
	}

	count := 1
	if c, ok := options["count"]; ok {
		n, err := strconv.Atoi(c)
		if err != nil || n < 1 {
			fmt.Printf("ERROR: invalid --count %q\n", c)
			return -1
		}
		count = n
	}

	ctx := context.Background()
	if count == 1 {
		text, node, err := tmpl.EvaluateOpts(ctx, evalOpts...)
		if err != nil {
			fmt.Printf("ERROR: %s\n", err)
			return -1
		}
		fmt.Fprintln(out, text)
		if node != nil {
			printTrace(node, 0)
		}
		return 0
	}

	seeds := make([]int64, count)
	for i := range seeds {
		seeds[i] = int64(i)
	}
	results := tmpl.EvaluateMultiple(ctx, seeds, cfg.Concurrency, evalOpts...)
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("ERROR: seed %d: %s\n", r.Seed, r.Err)
			continue
		}
		fmt.Fprintln(out, r.Text)
	}
	return 0
}

func main() { os.Exit(app.Run(os.Args, os.Stdout)) }
