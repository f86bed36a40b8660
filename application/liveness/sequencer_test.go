package liveness

import (
	"fmt"
	"testing"

	"facegate.io/entities"
)

func TestGenerateChallengeSequenceClampsCount(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		requested int
		want      int
	}{
		{requested: -3, want: 1},
		{requested: 0, want: 1},
		{requested: 1, want: 1},
		{requested: 2, want: 2},
		{requested: 3, want: 3},
		{requested: 4, want: 3},
		{requested: 100, want: 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("count %d", tt.requested), func(t *testing.T) {
			sequence, err := GenerateChallengeSequence(cfg, tt.requested, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(sequence) != tt.want {
				t.Errorf("sequence length = %d, want %d", len(sequence), tt.want)
			}
		})
	}
}

func TestGenerateChallengeSequenceAlwaysContainsRotation(t *testing.T) {
	cfg := DefaultConfig()
	for count := 1; count <= 3; count++ {
		for trial := 0; trial < 200; trial++ {
			sequence, err := GenerateChallengeSequence(cfg, count, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			hasRotation := false
			for _, challenge := range sequence {
				if challenge.Rotation() {
					hasRotation = true
				}
			}
			if !hasRotation {
				t.Fatalf("count %d trial %d: sequence %v has no rotation challenge", count, trial, sequence)
			}
		}
	}
}

func TestGenerateChallengeSequenceIsUnpredictable(t *testing.T) {
	cfg := DefaultConfig()
	seen := map[string]bool{}
	for trial := 0; trial < 100; trial++ {
		sequence, err := GenerateChallengeSequence(cfg, 3, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		key := ""
		for _, challenge := range sequence {
			key += string(challenge) + "|"
		}
		seen[key] = true
	}
	// 100 draws over the six permutations of a three-element pool landing on
	// fewer than three distinct orders would indicate a broken shuffle
	if len(seen) < 3 {
		t.Errorf("100 trials produced only %d distinct sequences", len(seen))
	}
}

func TestGenerateChallengeSequenceExclusions(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("excluding smile leaves only rotations", func(t *testing.T) {
		for trial := 0; trial < 50; trial++ {
			sequence, err := GenerateChallengeSequence(cfg, 3, []entities.ChallengeType{entities.ChallengeSmile})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, challenge := range sequence {
				if challenge == entities.ChallengeSmile {
					t.Fatalf("excluded challenge %s present in %v", entities.ChallengeSmile, sequence)
				}
			}
		}
	})

	t.Run("excluding every rotation still yields a rotation", func(t *testing.T) {
		for trial := 0; trial < 50; trial++ {
			sequence, err := GenerateChallengeSequence(cfg, 1, []entities.ChallengeType{
				entities.ChallengeTurnLeft,
				entities.ChallengeTurnRight,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			hasRotation := false
			for _, challenge := range sequence {
				if challenge.Rotation() {
					hasRotation = true
				}
			}
			if !hasRotation {
				t.Fatalf("sequence %v has no rotation challenge", sequence)
			}
		}
	})
}
