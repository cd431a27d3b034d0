package parlay

import (
	"errors"
	"testing"

	"github.com/yourusername/parlayscope/internal/models"
)

func TestNewLeg(t *testing.T) {
	leg, err := NewLeg("  Lakers ML  ", 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leg.Description != "Lakers ML" {
		t.Fatalf("expected trimmed description, got %q", leg.Description)
	}
	if leg.DecimalOdds != 2.5 {
		t.Fatalf("expected decimal odds 2.5, got %v", leg.DecimalOdds)
	}
	if leg.ImpliedProbability != 0.4 {
		t.Fatalf("expected implied probability 0.4, got %v", leg.ImpliedProbability)
	}
}

func TestNewLegCanonicalizesEvenMoney(t *testing.T) {
	leg, err := NewLeg("Warriors ML", -100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if leg.AmericanOdds != 100 {
		t.Fatalf("expected -100 stored as canonical +100, got %d", leg.AmericanOdds)
	}
	if leg.DecimalOdds != 2.0 {
		t.Fatalf("expected decimal odds 2.0, got %v", leg.DecimalOdds)
	}
	if leg.ImpliedProbability != 0.5 {
		t.Fatalf("expected implied probability 0.5, got %v", leg.ImpliedProbability)
	}
}

func TestNewLegRejectsEmptyDescription(t *testing.T) {
	if _, err := NewLeg("", 150); !errors.Is(err, models.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription, got %v", err)
	}
	if _, err := NewLeg("   ", 150); !errors.Is(err, models.ErrEmptyDescription) {
		t.Fatalf("expected ErrEmptyDescription for whitespace, got %v", err)
	}
}

func TestNewLegRejectsZeroOdds(t *testing.T) {
	if _, err := NewLeg("X", 0); !errors.Is(err, models.ErrInvalidOdds) {
		t.Fatalf("expected ErrInvalidOdds, got %v", err)
	}
	if _, err := NewLeg("X", 50); !errors.Is(err, models.ErrInvalidOdds) {
		t.Fatalf("expected ErrInvalidOdds for magnitude < 100, got %v", err)
	}
}

func TestNewLegsCollectsFailures(t *testing.T) {
	legs, failures := NewLegs(
		[]string{"Lakers ML", "", "Celtics -3.5"},
		[]int{150, -110, 0},
	)
	if len(legs) != 1 {
		t.Fatalf("expected 1 valid leg, got %d", len(legs))
	}
	if len(failures) != 2 {
		t.Fatalf("expected 2 failures, got %d", len(failures))
	}
	if failures[0].Index != 1 || !errors.Is(failures[0], models.ErrEmptyDescription) {
		t.Fatalf("expected index 1 empty-description failure, got %+v", failures[0])
	}
	if failures[1].Index != 2 || !errors.Is(failures[1], models.ErrInvalidOdds) {
		t.Fatalf("expected index 2 invalid-odds failure, got %+v", failures[1])
	}
}
