package liveness

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"facegate.io/entities"
)

// ChallengePool is the full set of challenges a session can draw from.
var ChallengePool = []entities.ChallengeType{
	entities.ChallengeSmile,
	entities.ChallengeTurnLeft,
	entities.ChallengeTurnRight,
}

var rotationChallenges = []entities.ChallengeType{
	entities.ChallengeTurnLeft,
	entities.ChallengeTurnRight,
}

// GenerateChallengeSequence produces the ordered challenge list for a new
// session. count is clamped server side regardless of what the caller asked
// for, the shuffle is driven by a CSPRNG, and the result always contains at
// least one rotation challenge. Exclusions that would leave no rotation
// challenge available are ignored for the rotation slot.
func GenerateChallengeSequence(cfg Config, count int, exclude []entities.ChallengeType) ([]entities.ChallengeType, error) {
	if count < cfg.MinChallenges {
		count = cfg.MinChallenges
	}
	if count > cfg.MaxChallenges {
		count = cfg.MaxChallenges
	}

	pool := []entities.ChallengeType{}
	for _, challenge := range ChallengePool {
		if !containsChallenge(exclude, challenge) {
			pool = append(pool, challenge)
		}
	}
	if len(pool) == 0 {
		pool = append(pool, ChallengePool...)
	}
	if count > len(pool) {
		count = len(pool)
	}

	shuffled := make([]entities.ChallengeType, len(pool))
	copy(shuffled, pool)
	if err := secureShuffle(shuffled); err != nil {
		return nil, err
	}
	sequence := shuffled[:count]

	hasRotation := false
	for _, challenge := range sequence {
		if challenge.Rotation() {
			hasRotation = true
			break
		}
	}
	if !hasRotation {
		rotations := []entities.ChallengeType{}
		for _, rotation := range rotationChallenges {
			if !containsChallenge(exclude, rotation) {
				rotations = append(rotations, rotation)
			}
		}
		if len(rotations) == 0 {
			rotations = rotationChallenges
		}
		slot, err := secureIntn(len(sequence))
		if err != nil {
			return nil, err
		}
		pick, err := secureIntn(len(rotations))
		if err != nil {
			return nil, err
		}
		sequence[slot] = rotations[pick]
	}

	return sequence, nil
}

// Fisher-Yates over a CSPRNG. A predictable sequence would let an attacker
// pre-record the required motions, so math/rand is not acceptable here.
func secureShuffle(challenges []entities.ChallengeType) error {
	for i := len(challenges) - 1; i > 0; i-- {
		j, err := secureIntn(i + 1)
		if err != nil {
			return err
		}
		challenges[i], challenges[j] = challenges[j], challenges[i]
	}
	return nil
}

func secureIntn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("secureIntn called with non-positive bound %d", n)
	}
	value, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(value.Int64()), nil
}

func containsChallenge(list []entities.ChallengeType, target entities.ChallengeType) bool {
	for _, challenge := range list {
		if challenge == target {
			return true
		}
	}
	return false
}
