package prompt

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/leofalp/cllm/providers/memory"
)

//go:embed system_message.tmpl
var defaultTemplate string

// none stands in for an empty section.
const none = "None"

// Sections is the data passed to the template. Each field is either "None"
// or a newline-prefixed bullet list ("\n- a\n- b").
type Sections struct {
	UserFacts      string
	UserMannerisms string
	SelfTraits     string
}

// Assembler renders the system prompt from a memory snapshot.
type Assembler struct {
	store    memory.Store
	template *template.Template
}

// Option configures an Assembler.
type Option func(*Assembler) error

// WithTemplate replaces the embedded template. The text is parsed as a
// text/template over Sections.
func WithTemplate(text string) Option {
	return func(a *Assembler) error {
		tmpl, err := template.New("system").Option("missingkey=error").Parse(text)
		if err != nil {
			return fmt.Errorf("parse prompt template: %w", err)
		}
		a.template = tmpl
		return nil
	}
}

// New returns an Assembler reading from store.
func New(store memory.Store, opts ...Option) (*Assembler, error) {
	a := &Assembler{
		store:    store,
		template: template.Must(template.New("system").Parse(defaultTemplate)),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Build reads the profile and self-traits and renders the prompt. It never writes.
func (a *Assembler) Build(ctx context.Context) (string, error) {
	profile, err := a.store.ReadProfile(ctx)
	if err != nil {
		return "", fmt.Errorf("read user profile: %w", err)
	}
	traits, err := a.store.ReadSelfTraits(ctx)
	if err != nil {
		return "", fmt.Errorf("read self traits: %w", err)
	}

	sections := Sections{
		UserFacts:      bullets(profile.Facts),
		UserMannerisms: bullets(profile.Mannerisms),
		SelfTraits:     bullets(traits),
	}

	var buf bytes.Buffer
	if err := a.template.Execute(&buf, sections); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}

func bullets(items []string) string {
	if len(items) == 0 {
		return none
	}
	return "\n- " + strings.Join(items, "\n- ")
}
