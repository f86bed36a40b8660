package liveness

import (
	"time"

	"facegate.io/entities"
)

// BatchChallengeAttempt is one labeled group of frames from the batch shape
// of the protocol: the caller claims the group answers a specific challenge,
// and the claim is checked against the assigned sequence before any
// evaluation happens.
type BatchChallengeAttempt struct {
	Challenge entities.ChallengeType
	Frames    []FrameSignals
}

// RunBatch drives a fresh session through the whole state machine from an
// ordered frame dump: baseline frames first, then one group per challenge.
// Debounce and anti-replay semantics are identical to the interactive
// per-frame path; only the granularity differs.
func (s *Session) RunBatch(baselineFrames []FrameSignals, attempts []BatchChallengeAttempt) (FinalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.record.Phase.Terminal() {
		if s.result != nil {
			return *s.result, nil
		}
		return s.finalizeLocked(now)
	}
	if s.record.Phase != entities.PhaseConnecting {
		return FinalResult{}, ErrSessionConsumed
	}
	if now.Sub(s.record.StartedAt) > s.record.Timeouts.Session {
		s.failLocked(ReasonSessionExpired, now)
		return s.finalizeLocked(now)
	}
	s.record.LastActivityAt = now
	s.transitionLocked(entities.PhaseDetecting, now)

	baseline, ok := s.batchBaselineLocked(baselineFrames, now)
	if !ok {
		s.failLocked(ReasonNoFaceDetected, now)
		return s.finalizeLocked(now)
	}
	s.record.Baseline = baseline
	s.transitionLocked(entities.PhaseChallenging, now)

	// the claimed order must exactly match the assigned sequence before any
	// challenge is evaluated (anti-replay / anti-precomputation)
	for i, attempt := range attempts {
		if i >= len(s.record.ChallengeSequence) || attempt.Challenge != s.record.ChallengeSequence[i] {
			s.failLocked(ReasonChallengeSequenceMismatch, now)
			return s.finalizeLocked(now)
		}
	}

	for _, attempt := range attempts {
		s.clearChallengeStateLocked()
		passed, score := s.batchChallengeLocked(attempt)
		s.record.ChallengeResults = append(s.record.ChallengeResults, entities.ChallengeResult{
			Challenge:   attempt.Challenge,
			Passed:      passed,
			Score:       score,
			CompletedAt: now,
		})
		s.record.CurrentChallengeIndex++
	}
	s.clearChallengeStateLocked()
	s.transitionLocked(entities.PhaseVerifying, now)
	s.stopChallengeTimerLocked()

	return s.finalizeLocked(now)
}

// batchBaselineLocked replays the baseline frames through the same stability
// debounce the interactive path uses and freezes the frame that reached
// stability.
func (s *Session) batchBaselineLocked(frames []FrameSignals, now time.Time) (*entities.BaselineSignals, bool) {
	counter := 0
	for _, sig := range frames {
		qualifies, _ := s.faceQualifies(sig)
		if ObserveStable(&counter, qualifies, s.cfg.StabilityThreshold) {
			baseline := BaselineFromSignals(sig)
			baseline.CapturedAt = now
			return baseline, true
		}
	}
	return nil, false
}

// batchChallengeLocked evaluates one challenge group. The group passes only
// when the stability threshold of consecutive satisfying frames is reached,
// exactly as in the interactive path; the best observed score is recorded
// either way.
func (s *Session) batchChallengeLocked(attempt BatchChallengeAttempt) (bool, float64) {
	counter := 0
	bestScore := 0.0
	scored := false
	for _, sig := range attempt.Frames {
		if !sig.FaceDetected || sig.FaceCount != 1 {
			ObserveStable(&counter, false, s.cfg.StabilityThreshold)
			continue
		}
		satisfied, score := ChallengeSatisfied(s.cfg, attempt.Challenge, s.record.Baseline, sig)
		if !scored || satisfied {
			bestScore = score
			scored = true
		}
		if ObserveStable(&counter, satisfied, s.cfg.StabilityThreshold) {
			return true, score
		}
	}
	return false, bestScore
}
