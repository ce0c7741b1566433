package budget

import (
	"context"
	"errors"
	"testing"
)

// failingStore returns err from every lookup.
type failingStore struct{ err error }

func (f failingStore) TokenBudget(context.Context, string) (*TokenBudget, error) {
	return nil, f.err
}

func (f failingStore) PhaseBudget(context.Context, string) (*PhaseBudget, error) {
	return nil, f.err
}

func TestResolve_TokenBudgetWins(t *testing.T) {
	s := NewMemoryStore()
	s.SetTokenBudget(TokenBudget{VentureID: "v1", Allocated: 100000, Remaining: 50000})
	s.AddPhaseBudget(PhaseBudget{VentureID: "v1", Phase: 3, Allocated: 30000, Remaining: 20000})

	r, err := Resolve(context.Background(), s, "v1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r == nil {
		t.Fatal("expected a record")
	}
	if r.Source != SourceToken {
		t.Errorf("Source = %q, want %q", r.Source, SourceToken)
	}
	if r.Remaining != 50000 {
		t.Errorf("Remaining = %d, want 50000", r.Remaining)
	}
	if r.Phase != nil {
		t.Errorf("Phase = %v, want nil for token budgets", *r.Phase)
	}
}

func TestResolve_PhaseFallbackUsesHighestPhase(t *testing.T) {
	s := NewMemoryStore()
	s.AddPhaseBudget(PhaseBudget{VentureID: "v2", Phase: 1, Allocated: 10000, Remaining: 5})
	s.AddPhaseBudget(PhaseBudget{VentureID: "v2", Phase: 4, Allocated: 30000, Remaining: 20000})
	s.AddPhaseBudget(PhaseBudget{VentureID: "v2", Phase: 2, Allocated: 10000, Remaining: 7})

	r, err := Resolve(context.Background(), s, "v2")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r == nil || r.Source != SourcePhase {
		t.Fatalf("expected phase record, got %+v", r)
	}
	if r.Remaining != 20000 {
		t.Errorf("Remaining = %d, want 20000", r.Remaining)
	}
	if r.Phase == nil || *r.Phase != 4 {
		t.Errorf("Phase = %v, want 4", r.Phase)
	}
}

func TestResolve_Unconfigured(t *testing.T) {
	r, err := Resolve(context.Background(), NewMemoryStore(), "nobody")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if r != nil {
		t.Errorf("expected nil record, got %+v", r)
	}
}

func TestResolve_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := Resolve(context.Background(), failingStore{err: boom}, "v1")
	if err != boom {
		t.Fatalf("err = %v, want %v unwrapped", err, boom)
	}
}

// phaseFailingStore has no token budget and fails the phase lookup.
type phaseFailingStore struct{ err error }

func (phaseFailingStore) TokenBudget(context.Context, string) (*TokenBudget, error) {
	return nil, nil
}

func (f phaseFailingStore) PhaseBudget(context.Context, string) (*PhaseBudget, error) {
	return nil, f.err
}

func TestResolve_PropagatesPhaseErrorUnchanged(t *testing.T) {
	boom := errors.New("timeout")
	_, err := Resolve(context.Background(), phaseFailingStore{err: boom}, "v1")
	if err != boom {
		t.Fatalf("err = %v, want %v unwrapped", err, boom)
	}
}

func TestAddPhaseBudget_ReplacesSamePhase(t *testing.T) {
	s := NewMemoryStore()
	s.AddPhaseBudget(PhaseBudget{VentureID: "v", Phase: 1, Remaining: 10})
	s.AddPhaseBudget(PhaseBudget{VentureID: "v", Phase: 1, Remaining: 0})

	pb, err := s.PhaseBudget(context.Background(), "v")
	if err != nil {
		t.Fatal(err)
	}
	if pb.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0 after replace", pb.Remaining)
	}
}

func TestHasVenture(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"", false},
		{"   ", false},
		{"v1", true},
	}
	for _, tt := range tests {
		if got := HasVenture(tt.id); got != tt.want {
			t.Errorf("HasVenture(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestExhausted(t *testing.T) {
	tests := []struct {
		name string
		rec  *Record
		want bool
	}{
		{"nil record", nil, true},
		{"zero", &Record{Remaining: 0}, true},
		{"negative", &Record{Remaining: -12}, true},
		{"positive", &Record{Remaining: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Exhausted(tt.rec); got != tt.want {
				t.Errorf("Exhausted = %v, want %v", got, tt.want)
			}
		})
	}
}
