package journal

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/leofalp/cllm/providers/memory"
	"github.com/leofalp/cllm/providers/memory/inmemory"
	"github.com/leofalp/cllm/providers/observability/slogobs"
)

func newTestStore(opts ...Option) (*Store, *inmemory.Container, *inmemory.Container) {
	profile := inmemory.NewContainer("user_data")
	traits := inmemory.NewContainer("self_personality")
	fixed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time { return fixed })}, opts...)
	return New(profile, traits, opts...), profile, traits
}

func TestAppendSelfTrait_Dedupe(t *testing.T) {
	store, _, _ := newTestStore()
	ctx := context.Background()

	outcome, err := store.AppendSelfTrait(ctx, "curious")
	if err != nil || outcome != memory.Added {
		t.Fatalf("first append: got %v, %v", outcome, err)
	}
	outcome, err = store.AppendSelfTrait(ctx, "curious")
	if err != nil || outcome != memory.Skipped {
		t.Fatalf("duplicate append: got %v, %v", outcome, err)
	}
	if _, err := store.AppendSelfTrait(ctx, "Curious"); err != nil {
		t.Fatalf("case-different trait should be added: %v", err)
	}

	traits, err := store.ReadSelfTraits(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(traits, []string{"curious", "Curious"}) {
		t.Errorf("unexpected traits %v", traits)
	}
}

func TestAppendFactOrMannerism_NoDedupe(t *testing.T) {
	store, _, _ := newTestStore()
	ctx := context.Background()

	for range 3 {
		if err := store.AppendFactOrMannerism(ctx, memory.KindFact, "likes tea"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	profile, err := store.ReadProfile(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profile.Facts) != 3 {
		t.Errorf("expected 3 facts, got %d", len(profile.Facts))
	}
}

func TestReadProfile_PartitionKeepsOrder(t *testing.T) {
	store, _, _ := newTestStore()
	ctx := context.Background()

	appends := []struct {
		kind memory.Kind
		text string
	}{
		{memory.KindFact, "A"},
		{memory.KindMannerism, "B"},
		{memory.KindFact, "C"},
	}
	for _, a := range appends {
		if err := store.AppendFactOrMannerism(ctx, a.kind, a.text); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	profile, err := store.ReadProfile(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(profile.Facts, []string{"A", "C"}) || !slices.Equal(profile.Mannerisms, []string{"B"}) {
		t.Errorf("unexpected profile %+v", profile)
	}
}

func TestAppend_InvalidArguments(t *testing.T) {
	store, profile, _ := newTestStore()
	ctx := context.Background()

	tests := []struct {
		name string
		kind memory.Kind
		text string
	}{
		{"unknown kind", memory.Kind("secret"), "x"},
		{"empty text", memory.KindFact, ""},
		{"blank text", memory.KindMannerism, "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.AppendFactOrMannerism(ctx, tt.kind, tt.text)
			if !errors.Is(err, memory.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}

	if _, err := store.AppendSelfTrait(ctx, ""); !errors.Is(err, memory.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for empty trait, got %v", err)
	}

	data, _ := profile.Load(ctx)
	if string(data) != "[]" {
		t.Errorf("rejected appends must not write, got %s", data)
	}
}

func TestReadProfile_SkipsUnknownKinds(t *testing.T) {
	store, profile, _ := newTestStore()
	ctx := context.Background()

	raw := `[{"entry_type":"fact","entry":"A","timestamp":"2024-01-01T10:00:00.123456"},
	         {"entry_type":"wish","entry":"B","timestamp":"2024-01-01T10:00:01"}]`
	if err := profile.Store(ctx, []byte(raw)); err != nil {
		t.Fatal(err)
	}

	got, err := store.ReadProfile(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got.Facts, []string{"A"}) || len(got.Mannerisms) != 0 {
		t.Errorf("unexpected profile %+v", got)
	}
}

func TestCorruptContainer_EmptyWithSingleWarning(t *testing.T) {
	var logs bytes.Buffer
	observer := slogobs.New(slogobs.WithOutput(&logs), slogobs.WithFormat(slogobs.FormatJSON), slogobs.WithLevel(slog.LevelWarn))
	store, _, traits := newTestStore(WithObserver(observer))
	ctx := context.Background()

	if err := traits.Store(ctx, []byte("{not json")); err != nil {
		t.Fatal(err)
	}

	for range 2 {
		got, err := store.ReadSelfTraits(ctx)
		if err != nil {
			t.Fatalf("corrupt container must not be an error: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("expected empty traits, got %v", got)
		}
	}

	if n := strings.Count(logs.String(), "treating it as empty"); n != 1 {
		t.Errorf("expected exactly one warning, got %d: %s", n, logs.String())
	}

	outcome, err := store.AppendSelfTrait(ctx, "patient")
	if err != nil || outcome != memory.Added {
		t.Fatalf("append after corruption: got %v, %v", outcome, err)
	}
	got, _ := store.ReadSelfTraits(ctx)
	if !slices.Equal(got, []string{"patient"}) {
		t.Errorf("expected a fresh collection, got %v", got)
	}
}

func TestEntries_CarryTimestamps(t *testing.T) {
	store, _, _ := newTestStore()
	ctx := context.Background()

	if err := store.AppendFactOrMannerism(ctx, memory.KindMannerism, "terse"); err != nil {
		t.Fatal(err)
	}
	entries, err := store.ProfileEntries(ctx)
	if err != nil || len(entries) != 1 {
		t.Fatalf("unexpected entries %v, %v", entries, err)
	}
	if want := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC); !entries[0].Timestamp.Equal(want) {
		t.Errorf("expected timestamp %v, got %v", want, entries[0].Timestamp)
	}
}

type failingContainer struct{}

func (failingContainer) Name() string                         { return "broken" }
func (failingContainer) Load(context.Context) ([]byte, error) { return nil, errors.New("disk gone") }
func (failingContainer) Store(context.Context, []byte) error  { return errors.New("disk gone") }

func TestLoadFailureIsReturned(t *testing.T) {
	store := New(failingContainer{}, failingContainer{})
	if err := store.AppendFactOrMannerism(context.Background(), memory.KindFact, "x"); err == nil {
		t.Fatal("expected the container error to surface")
	}
	if _, err := store.ReadSelfTraits(context.Background()); err == nil {
		t.Fatal("expected the container error to surface")
	}
}
