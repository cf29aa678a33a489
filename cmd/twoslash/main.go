package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/tmm/rustdoc-twoslash/pkg/engine"
	"github.com/tmm/rustdoc-twoslash/pkg/manifest"
	"github.com/tmm/rustdoc-twoslash/pkg/twoslash"
)

const version = "0.1.0"

// Command line flags
var (
	flagVersion = flag.Bool("version", false, "Show version information")
	flagVerbose = flag.Bool("verbose", false, "Enable verbose logging")
	flagScratch = flag.String("scratch-dir", "", "Scratch directory for the analyzer's build cache")
)

// Subcommands
var commands = map[string]func([]string){
	"process":  processCommand,
	"classify": classifyCommand,
	"help":     helpCommand,
}

func main() {
	log.SetFlags(0) // Remove timestamp from log output
	flag.Usage = usage
	flag.Parse()

	if *flagVersion {
		fmt.Printf("twoslash version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}

	cmd := args[0]
	if fn, ok := commands[cmd]; ok {
		fn(args[1:])
	} else {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `twoslash - hover type annotations for documentation snippets

Usage:
  twoslash [flags] <command> [arguments]

Commands:
  process [file]    Analyze a snippet (from file or stdin) and print annotations as JSON
  classify [file]   Show the preamble/body split and the wrapped program
  help              Show this help

Flags:
`)
	flag.PrintDefaults()
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if *flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// readSnippet reads the snippet from the file argument, or stdin when
// no argument is given.
func readSnippet(args []string) string {
	if len(args) > 0 {
		content, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("read snippet: %v", err)
		}
		return string(content)
	}
	content, err := io.ReadAll(os.Stdin)
	if err != nil {
		log.Fatalf("read stdin: %v", err)
	}
	return string(content)
}

func processCommand(args []string) {
	if !twoslash.Enabled() {
		fmt.Fprintf(os.Stderr, "twoslash processing is disabled (set %s=1)\n", twoslash.EnableEnv)
		os.Exit(1)
	}

	logger := newLogger()
	snippet := readSnippet(args)

	svc := twoslash.NewService(func() (engine.Engine, error) {
		return engine.NewSubprocess(engine.Settings{
			Manifest:   manifest.EngineText(logger),
			ScratchDir: *flagScratch,
			Logger:     logger,
		})
	}, logger)
	defer func() { _ = svc.Close() }()

	annotations, diags := svc.ProcessCodeBlockDiag(context.Background(), snippet)
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "%s: %s\n", d.Code, d.Message)
	}

	printJSON(struct {
		Annotations []twoslash.TypeAnnotation `json:"annotations"`
	}{Annotations: annotations})
}

func classifyCommand(args []string) {
	snippet := readSnippet(args)

	c := twoslash.Classify(snippet)
	w := twoslash.Wrap(c)

	printJSON(struct {
		Preamble         string `json:"preamble"`
		Body             string `json:"body"`
		NeedsWrap        bool   `json:"needs_wrap"`
		Wrapped          string `json:"wrapped"`
		PreambleLen      int    `json:"preamble_len"`
		WrapperPrefixLen int    `json:"wrapper_prefix_len"`
	}{
		Preamble:         c.Preamble,
		Body:             c.Body,
		NeedsWrap:        c.NeedsWrap(),
		Wrapped:          w.Text,
		PreambleLen:      w.PreambleLen,
		WrapperPrefixLen: w.WrapperPrefixLen,
	})
}

func helpCommand(args []string) {
	usage()
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("encode output: %v", err)
	}
	fmt.Println(string(b))
}
