package entities

import (
	"time"

	"facegate.io/application/utils"
)

type SessionPhase string

const (
	PhaseConnecting  SessionPhase = "connecting"
	PhaseDetecting   SessionPhase = "detecting"
	PhaseCountdown   SessionPhase = "countdown"
	PhaseBaseline    SessionPhase = "baseline"
	PhaseChallenging SessionPhase = "challenging"
	PhaseCapturing   SessionPhase = "capturing"
	PhaseVerifying   SessionPhase = "verifying"
	PhaseCompleted   SessionPhase = "completed"
	PhaseFailed      SessionPhase = "failed"
)

// Terminal reports whether no further transition can leave this phase.
func (p SessionPhase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

type ChallengeType string

const (
	ChallengeSmile     ChallengeType = "smile"
	ChallengeTurnLeft  ChallengeType = "turn_left"
	ChallengeTurnRight ChallengeType = "turn_right"
)

// Rotation reports whether the challenge requires a head rotation. Rotation
// challenges are harder to spoof with a still image than an expression
// challenge, so every session must include at least one.
func (c ChallengeType) Rotation() bool {
	return c == ChallengeTurnLeft || c == ChallengeTurnRight
}

type FaceBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BaselineSignals is the subject's neutral-state snapshot, frozen once at the
// baseline phase and used as the comparison point for every later challenge.
type BaselineSignals struct {
	RealScore    float64   `json:"realScore"`
	LiveScore    float64   `json:"liveScore"`
	HappyScore   float64   `json:"happyScore"`
	YawDegrees   float64   `json:"yawDegrees"`
	PitchDegrees float64   `json:"pitchDegrees"`
	RollDegrees  float64   `json:"rollDegrees"`
	CapturedAt   time.Time `json:"capturedAt"`
}

type ChallengeResult struct {
	Challenge   ChallengeType `json:"challenge"`
	Passed      bool          `json:"passed"`
	Score       float64       `json:"score"`
	CompletedAt time.Time     `json:"completedAt"`
}

// SessionTimeouts is the timing configuration snapshot copied at session
// creation so later configuration changes cannot affect an in-flight session.
type SessionTimeouts struct {
	Session   time.Duration `json:"session"`
	Challenge time.Duration `json:"challenge"`
	Countdown time.Duration `json:"countdown"`
}

// LivenessSession is the unit of verification work. It exists only in server
// memory for the duration of the capture and is destroyed on reaching a
// terminal phase or on exceeding the session timeout.
type LivenessSession struct {
	ID        string  `json:"id"`
	DeviceID  string  `json:"deviceID"`
	WebhookURL *string `json:"webhookURL"`

	Phase                 SessionPhase    `json:"phase"`
	ChallengeSequence     []ChallengeType `json:"challengeSequence"`
	CurrentChallengeIndex int             `json:"currentChallengeIndex"`

	ConsecutiveFaceDetections  int `json:"consecutiveFaceDetections"`
	ConsecutiveChallengePasses int `json:"consecutiveChallengePasses"`

	Baseline         *BaselineSignals  `json:"baseline"`
	ChallengeResults []ChallengeResult `json:"challengeResults"`

	Timeouts SessionTimeouts `json:"timeouts"`

	StartedAt      time.Time `json:"startedAt"`
	LastActivityAt time.Time `json:"lastActivityAt"`
	PhaseEnteredAt time.Time `json:"phaseEnteredAt"`

	RetryCount int `json:"retryCount"`
}

func NewLivenessSession(deviceID string, sequence []ChallengeType, timeouts SessionTimeouts, webhookURL *string) *LivenessSession {
	now := time.Now()
	return &LivenessSession{
		ID:                utils.GenerateULIDString(),
		DeviceID:          deviceID,
		WebhookURL:        webhookURL,
		Phase:             PhaseConnecting,
		ChallengeSequence: sequence,
		ChallengeResults:  []ChallengeResult{},
		Timeouts:          timeouts,
		StartedAt:         now,
		LastActivityAt:    now,
		PhaseEnteredAt:    now,
	}
}

// CurrentChallenge returns the challenge the cursor points at, or nil once the
// cursor has advanced past the last challenge.
func (model *LivenessSession) CurrentChallenge() *ChallengeType {
	if model.CurrentChallengeIndex >= len(model.ChallengeSequence) {
		return nil
	}
	challenge := model.ChallengeSequence[model.CurrentChallengeIndex]
	return &challenge
}
