package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/leofalp/cllm/providers/memory"
	"github.com/leofalp/cllm/providers/observability"
)

// Store implements memory.Store over two containers: one for the user
// profile (facts and mannerisms interleaved) and one for self-traits.
type Store struct {
	mu       sync.Mutex
	profile  memory.Container
	traits   memory.Container
	observer observability.Provider
	now      func() time.Time
	warned   map[string]bool
}

// Option configures a Store.
type Option func(*Store)

// WithObserver sets where corruption warnings and counters go.
func WithObserver(observer observability.Provider) Option {
	return func(s *Store) {
		s.observer = observability.OrNop(observer)
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New returns a Store reading and writing the given containers.
func New(profile, traits memory.Container, opts ...Option) *Store {
	s := &Store{
		profile:  profile,
		traits:   traits,
		observer: observability.Nop{},
		now:      time.Now,
		warned:   map[string]bool{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ memory.Store = (*Store)(nil)

func (s *Store) AppendFactOrMannerism(ctx context.Context, kind memory.Kind, text string) error {
	if _, err := memory.ParseKind(string(kind)); err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: empty %s", memory.ErrInvalidArgument, kind)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := loadCollection[memory.ProfileEntry](ctx, s, s.profile)
	if err != nil {
		return err
	}
	entries = append(entries, memory.ProfileEntry{Kind: kind, Text: text, Timestamp: memory.Timestamp{Time: s.now()}})
	return storeCollection(ctx, s.profile, entries)
}

func (s *Store) AppendSelfTrait(ctx context.Context, text string) (memory.Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return memory.Skipped, fmt.Errorf("%w: empty trait", memory.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := loadCollection[memory.TraitEntry](ctx, s, s.traits)
	if err != nil {
		return memory.Skipped, err
	}
	for _, entry := range entries {
		if entry.Text == text {
			s.observer.Debug(ctx, "self trait already recorded",
				observability.String(observability.AttrMemoryCollection, s.traits.Name()))
			return memory.Skipped, nil
		}
	}
	entries = append(entries, memory.TraitEntry{Text: text, Timestamp: memory.Timestamp{Time: s.now()}})
	if err := storeCollection(ctx, s.traits, entries); err != nil {
		return memory.Skipped, err
	}
	return memory.Added, nil
}

// ReadProfile partitions the profile collection by kind. Entries of any
// other kind are ignored.
func (s *Store) ReadProfile(ctx context.Context) (memory.Profile, error) {
	entries, err := s.ProfileEntries(ctx)
	if err != nil {
		return memory.Profile{}, err
	}

	profile := memory.Profile{Facts: []string{}, Mannerisms: []string{}}
	for _, entry := range entries {
		switch entry.Kind {
		case memory.KindFact:
			profile.Facts = append(profile.Facts, entry.Text)
		case memory.KindMannerism:
			profile.Mannerisms = append(profile.Mannerisms, entry.Text)
		}
	}
	return profile, nil
}

func (s *Store) ReadSelfTraits(ctx context.Context) ([]string, error) {
	entries, err := s.TraitEntries(ctx)
	if err != nil {
		return nil, err
	}
	traits := make([]string, 0, len(entries))
	for _, entry := range entries {
		traits = append(traits, entry.Text)
	}
	return traits, nil
}

// ProfileEntries returns the raw profile records with their timestamps.
func (s *Store) ProfileEntries(ctx context.Context) ([]memory.ProfileEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadCollection[memory.ProfileEntry](ctx, s, s.profile)
}

// TraitEntries returns the raw self-trait records with their timestamps.
func (s *Store) TraitEntries(ctx context.Context) ([]memory.TraitEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return loadCollection[memory.TraitEntry](ctx, s, s.traits)
}

// loadCollection must be called with s.mu held. Undecodable contents read
// as an empty collection.
func loadCollection[T any](ctx context.Context, s *Store, container memory.Container) ([]T, error) {
	data, err := container.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", container.Name(), err)
	}

	var entries []T
	if err := json.Unmarshal(data, &entries); err != nil {
		s.reportCorrupt(ctx, container, err)
		return []T{}, nil
	}
	if entries == nil {
		entries = []T{}
	}
	return entries, nil
}

func storeCollection[T any](ctx context.Context, container memory.Container, entries []T) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", container.Name(), err)
	}
	if err := container.Store(ctx, data); err != nil {
		return fmt.Errorf("store %s: %w", container.Name(), err)
	}
	return nil
}

// reportCorrupt warns once per container for the lifetime of the Store.
func (s *Store) reportCorrupt(ctx context.Context, container memory.Container, cause error) {
	name := container.Name()
	if span := observability.SpanFromContext(ctx); span != nil {
		span.AddEvent(observability.EventMemoryCorrupt, observability.String(observability.AttrMemoryContainer, name))
	}
	if s.warned[name] {
		return
	}
	s.warned[name] = true

	s.observer.Warn(ctx, "memory container is not valid JSON, treating it as empty",
		observability.String(observability.AttrMemoryContainer, name),
		observability.Error(cause),
	)
	s.observer.Counter(observability.MetricMemoryCorrupts).Add(ctx, 1,
		observability.String(observability.AttrMemoryContainer, name))
}
