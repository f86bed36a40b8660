package liveness

// ReasonCode is the closed set of failure reasons the engine resolves every
// fault into. Invalid or adversarial input is data, never a panic.
type ReasonCode string

const (
	ReasonSessionNotFound           ReasonCode = "session_not_found"
	ReasonSessionExpired            ReasonCode = "session_expired"
	ReasonSessionAbandoned          ReasonCode = "session_abandoned"
	ReasonChallengeTimeout          ReasonCode = "challenge_timeout"
	ReasonChallengeFailed           ReasonCode = "challenge_failed"
	ReasonChallengeSequenceMismatch ReasonCode = "challenge_sequence_mismatch"
	ReasonNoFaceDetected            ReasonCode = "no_face_detected"
	ReasonMaxRetriesExceeded        ReasonCode = "max_retries_exceeded"
	ReasonSpoofSuspected            ReasonCode = "spoof_suspected"
	ReasonIncompleteSequence        ReasonCode = "incomplete_sequence"
)

func (r ReasonCode) String() string {
	return string(r)
}
