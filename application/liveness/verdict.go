package liveness

import (
	"facegate.io/entities"
)

// SmileSatisfied evaluates one debounced frame against the smile challenge.
// Passes on a clear improvement over the subject's own neutral baseline, or
// on an unambiguously high absolute score for subjects whose baseline was
// already smiling.
func SmileSatisfied(cfg Config, baselineHappy, happy float64) bool {
	if happy >= cfg.SmileAbsoluteScore {
		return true
	}
	return happy >= cfg.SmileMinScore && happy-baselineHappy >= cfg.SmileMinDelta
}

// TurnSatisfied evaluates one debounced frame against a rotation challenge.
// The baseline must have been centered and the yaw must have moved in the
// requested direction relative to it; a head that was already turned before
// the challenge began must never pass.
func TurnSatisfied(cfg Config, challenge entities.ChallengeType, baselineYaw, yaw float64) bool {
	if FacingDirection(cfg, baselineYaw) != FacingCenter {
		return false
	}

	delta := yaw - baselineYaw
	switch challenge {
	case entities.ChallengeTurnLeft:
		if delta >= 0 {
			return false
		}
		return yaw <= -cfg.TurnMinYawDegrees || delta <= -cfg.TurnMinDeltaDegrees
	case entities.ChallengeTurnRight:
		if delta <= 0 {
			return false
		}
		return yaw >= cfg.TurnMinYawDegrees || delta >= cfg.TurnMinDeltaDegrees
	default:
		return false
	}
}

// ChallengeSatisfied dispatches one frame to the matching evaluator and
// returns the measured score alongside the pass decision.
func ChallengeSatisfied(cfg Config, challenge entities.ChallengeType, baseline *entities.BaselineSignals, sig FrameSignals) (bool, float64) {
	if baseline == nil {
		return false, 0
	}
	switch challenge {
	case entities.ChallengeSmile:
		return SmileSatisfied(cfg, baseline.HappyScore, sig.HappyScore), sig.HappyScore
	case entities.ChallengeTurnLeft, entities.ChallengeTurnRight:
		return TurnSatisfied(cfg, challenge, baseline.YawDegrees, sig.YawDegrees), sig.YawDegrees
	default:
		return false, 0
	}
}

// Verdict is the final accept/reject decision for a session.
type Verdict struct {
	Verified bool
	Reason   *ReasonCode
}

// ComputeVerdict combines the anti-spoofing gate on the frozen baseline with
// every per-challenge result and the integrity of the sequence actually
// completed. A session that was abandoned mid-sequence or whose completed
// order deviates from the assigned one fails with a distinguishable reason,
// never a silent partial pass.
func ComputeVerdict(cfg Config, record *entities.LivenessSession) Verdict {
	if record.Baseline == nil {
		return failedVerdict(ReasonNoFaceDetected)
	}
	if record.Baseline.RealScore < cfg.MinRealScore || record.Baseline.LiveScore < cfg.MinLiveScore {
		return failedVerdict(ReasonSpoofSuspected)
	}
	if len(record.ChallengeResults) != len(record.ChallengeSequence) {
		return failedVerdict(ReasonIncompleteSequence)
	}
	for i, result := range record.ChallengeResults {
		if result.Challenge != record.ChallengeSequence[i] {
			return failedVerdict(ReasonChallengeSequenceMismatch)
		}
	}
	for _, result := range record.ChallengeResults {
		if !result.Passed {
			return failedVerdict(ReasonChallengeFailed)
		}
	}
	return Verdict{Verified: true}
}

func failedVerdict(reason ReasonCode) Verdict {
	return Verdict{Verified: false, Reason: &reason}
}
