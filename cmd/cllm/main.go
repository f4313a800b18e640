// Command cllm is a terminal chat with Gemini that remembers facts about
// the user and its own personality between sessions.
//
//	cllm chat [first message]
//	cllm ask <prompt>
//	cllm memory show
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
)

const usage = `usage: cllm [flags] <command> [args]

commands:
  chat [message]   start an interactive conversation, optionally with a first message
  ask <prompt>     ask a single question without tools or memory
  memory show      print everything remembered so far

flags:
`

var errUsage = errors.New("usage")

type globalFlags struct {
	configPath string
	model      string
	ephemeral  bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "cllm: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("cllm", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var flags globalFlags
	fs.StringVar(&flags.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&flags.model, "model", "", "Gemini model to use")
	fs.BoolVar(&flags.ephemeral, "ephemeral", false, "keep memory in process only; nothing is persisted")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	command, rest := fs.Arg(0), fs.Args()[1:]
	switch command {
	case "chat":
		return withApp(ctx, flags, stdout, func(a *app) error {
			return a.chat(ctx, strings.Join(rest, " "), stdin)
		})
	case "ask":
		if len(rest) == 0 {
			fmt.Fprintln(stderr, "ask needs a prompt")
			return errUsage
		}
		return withApp(ctx, flags, stdout, func(a *app) error {
			return a.ask(ctx, strings.Join(rest, " "))
		})
	case "memory":
		if len(rest) != 1 || rest[0] != "show" {
			fmt.Fprintln(stderr, "usage: cllm memory show")
			return errUsage
		}
		return withApp(ctx, flags, stdout, func(a *app) error {
			return a.showMemory(ctx)
		})
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", command)
		fs.Usage()
		return errUsage
	}
}
