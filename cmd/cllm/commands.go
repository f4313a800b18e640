package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leofalp/cllm/core/session"
)

// printer writes only the part of a running total not printed yet.
type printer struct {
	out     io.Writer
	printed string
}

func (p *printer) sink(total string) {
	if !strings.HasPrefix(total, p.printed) {
		p.printed = ""
	}
	fmt.Fprint(p.out, total[len(p.printed):])
	p.printed = total
}

func (p *printer) reset() {
	p.printed = ""
}

func (a *app) chat(ctx context.Context, first string, stdin io.Reader) error {
	provider, err := a.provider()
	if err != nil {
		return err
	}

	p := &printer{out: a.out}
	s, err := session.New(provider, a.store,
		session.WithModel(a.model),
		session.WithObserver(a.observer),
		session.WithMaxPasses(*a.cfg.MaxPasses),
		session.WithTextSink(p.sink),
		session.WithToolNotifier(func(name string) {
			fmt.Fprintf(a.out, "\n[%s]\n", name)
		}),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "cllm chat. Type 'exit' or press Ctrl+D to leave, '/reset' to start over.")

	send := func(message string) {
		fmt.Fprint(a.out, "\ncllm: ")
		p.reset()
		if _, err := s.Send(ctx, message); err != nil {
			fmt.Fprintf(a.out, "\n[error] %v\n", err)
			return
		}
		fmt.Fprintln(a.out)
	}

	if first != "" {
		fmt.Fprintf(a.out, "you: %s\n", first)
		send(first)
	}

	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(a.out, "\nyou: ")
		if !scanner.Scan() {
			fmt.Fprintln(a.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(input) {
		case "":
			continue
		case "exit", "quit", "q":
			fmt.Fprintln(a.out, "Goodbye!")
			return nil
		case "/reset":
			s.Reset()
			fmt.Fprintln(a.out, "Conversation reset.")
			continue
		}
		send(input)
	}
}

func (a *app) ask(ctx context.Context, prompt string) error {
	provider, err := a.provider()
	if err != nil {
		return err
	}

	p := &printer{out: a.out}
	_, err = session.Ask(ctx, provider, prompt,
		session.WithModel(a.model),
		session.WithObserver(a.observer),
		session.WithTextSink(p.sink),
	)
	fmt.Fprintln(a.out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *app) showMemory(ctx context.Context) error {
	profile, err := a.store.ProfileEntries(ctx)
	if err != nil {
		return err
	}
	traits, err := a.store.TraitEntries(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "About you:")
	if len(profile) == 0 {
		fmt.Fprintln(a.out, "  nothing yet")
	}
	for _, entry := range profile {
		fmt.Fprintf(a.out, "  %-10s %s  %s\n", entry.Kind, formatTime(entry.Timestamp.Time), entry.Text)
	}

	fmt.Fprintln(a.out, "\nMy personality:")
	if len(traits) == 0 {
		fmt.Fprintln(a.out, "  nothing yet")
	}
	for _, entry := range traits {
		fmt.Fprintf(a.out, "  %s  %s\n", formatTime(entry.Timestamp.Time), entry.Text)
	}
	return nil
}
