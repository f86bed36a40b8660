package liveness

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"facegate.io/entities"
	"facegate.io/infrastructure/logger"
)

var (
	ErrSessionNotReady  = errors.New("session has not reached the verifying phase")
	ErrSessionConsumed  = errors.New("session has already processed frames and cannot run a batch")
	ErrRegistryCapacity = errors.New("maximum outstanding session count reached")
)

// CreateOptions carries the caller-supplied knobs for a new session. Every
// value is clamped or validated server side; a caller can never force an
// oversized challenge list or an empty pool.
type CreateOptions struct {
	NumChallenges     int
	ExcludeChallenges []entities.ChallengeType
	WebhookURL        *string
}

// Session owns one liveness verification session. All mutation is serialized
// through its mutex: inputs on the same session are processed strictly in
// submission order, while distinct sessions share no state at all.
type Session struct {
	mu     sync.Mutex
	record *entities.LivenessSession
	cfg    Config

	failure *ReasonCode
	result  *FinalResult

	now func() time.Time

	sessionTimer      *time.Timer
	challengeTimer    *time.Timer
	challengeTimerGen int

	// invoked once, off the session lock, when the session turns terminal
	onTerminal func(*Session)
}

// FrameUpdate is the externally visible projection of session state after one
// frame. It never exposes the raw baseline signals or the full future
// challenge order, only the current step.
type FrameUpdate struct {
	SessionID            string                  `json:"session_id"`
	Phase                entities.SessionPhase   `json:"phase"`
	FaceDetected         bool                    `json:"face_detected"`
	FaceBox              *entities.FaceBox       `json:"face_box,omitempty"`
	CountdownRemainingMS int64                   `json:"countdown_remaining_ms,omitempty"`
	CurrentChallenge     *entities.ChallengeType `json:"current_challenge,omitempty"`
	CapturedChallenge    *entities.ChallengeType `json:"captured_challenge,omitempty"`
	ChallengeIndex       int                     `json:"challenge_index"`
	ChallengeCount       int                     `json:"challenge_count"`
	Progress             float64                 `json:"progress"`
	Guidance             *string                 `json:"guidance,omitempty"`
	Reason               *ReasonCode             `json:"reason,omitempty"`
}

// FinalResult is the verdict surface handed to callers and webhook consumers.
type FinalResult struct {
	SessionID   string                     `json:"session_id"`
	Verified    bool                       `json:"verified"`
	Reason      *ReasonCode                `json:"reason,omitempty"`
	Results     []entities.ChallengeResult `json:"per_challenge_results"`
	CompletedAt time.Time                  `json:"completed_at"`
}

func NewSession(cfg Config, deviceID string, opts CreateOptions) (*Session, error) {
	sequence, err := GenerateChallengeSequence(cfg, opts.NumChallenges, opts.ExcludeChallenges)
	if err != nil {
		return nil, err
	}
	timeouts := entities.SessionTimeouts{
		Session:   cfg.SessionTimeout,
		Challenge: cfg.ChallengeTimeout,
		Countdown: cfg.CountdownDuration,
	}
	s := &Session{
		record: entities.NewLivenessSession(deviceID, sequence, timeouts, opts.WebhookURL),
		cfg:    cfg,
		now:    time.Now,
	}
	s.sessionTimer = time.AfterFunc(timeouts.Session, s.expire)
	logger.Info("liveness session created", logger.LoggerOptions{
		Key:  "sessionID",
		Data: s.record.ID,
	}, logger.LoggerOptions{
		Key:  "challengeCount",
		Data: len(sequence),
	})
	return s, nil
}

func (s *Session) ID() string {
	return s.record.ID
}

func (s *Session) DeviceID() string {
	return s.record.DeviceID
}

func (s *Session) WebhookURL() *string {
	return s.record.WebhookURL
}

func (s *Session) Timeouts() entities.SessionTimeouts {
	return s.record.Timeouts
}

func (s *Session) ChallengeCount() int {
	return len(s.record.ChallengeSequence)
}

func (s *Session) Phase() entities.SessionPhase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Phase
}

// SetOnTerminal registers the hook fired once when the session reaches a
// terminal phase. Must be set before the first frame is submitted.
func (s *Session) SetOnTerminal(hook func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTerminal = hook
}

// SubmitFrame runs one detector result through the state machine and returns
// the resulting projection. It never returns an error for adversarial or
// malformed signal content; faults resolve into reason codes.
func (s *Session) SubmitFrame(sig FrameSignals) FrameUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.record.Phase.Terminal() {
		return s.updateLocked(sig, nil)
	}

	now := s.now()
	if now.Sub(s.record.StartedAt) > s.record.Timeouts.Session {
		s.failLocked(ReasonSessionExpired, now)
		return s.updateLocked(sig, nil)
	}
	s.record.LastActivityAt = now

	if s.record.Phase == entities.PhaseConnecting {
		s.transitionLocked(entities.PhaseDetecting, now)
	}

	switch s.record.Phase {
	case entities.PhaseDetecting:
		return s.handleDetecting(sig, now)
	case entities.PhaseCountdown:
		return s.handleCountdown(sig, now)
	case entities.PhaseBaseline:
		return s.handleBaseline(sig, now)
	case entities.PhaseChallenging:
		return s.handleChallenging(sig, now)
	case entities.PhaseVerifying:
		return s.updateLocked(sig, guidance("all challenges captured, call finalize"))
	default:
		return s.updateLocked(sig, nil)
	}
}

func (s *Session) handleDetecting(sig FrameSignals, now time.Time) FrameUpdate {
	qualifies, hint := s.faceQualifies(sig)
	if ObserveStable(&s.record.ConsecutiveFaceDetections, qualifies, s.cfg.StabilityThreshold) {
		s.record.ConsecutiveFaceDetections = 0
		s.transitionLocked(entities.PhaseCountdown, now)
		return s.updateLocked(sig, guidance("hold still"))
	}
	return s.updateLocked(sig, hint)
}

func (s *Session) handleCountdown(sig FrameSignals, now time.Time) FrameUpdate {
	remaining := s.record.Timeouts.Countdown - now.Sub(s.record.PhaseEnteredAt)
	if remaining > 0 {
		update := s.updateLocked(sig, guidance("hold still"))
		update.CountdownRemainingMS = remaining.Milliseconds()
		return update
	}
	// countdown elapsed: this frame is the baseline candidate
	s.transitionLocked(entities.PhaseBaseline, now)
	return s.handleBaseline(sig, now)
}

func (s *Session) handleBaseline(sig FrameSignals, now time.Time) FrameUpdate {
	if !sig.FaceDetected || sig.FaceCount != 1 {
		return s.updateLocked(sig, guidance("keep your face in frame"))
	}
	baseline := BaselineFromSignals(sig)
	baseline.CapturedAt = now
	s.record.Baseline = baseline
	s.beginChallengeLocked(now)
	return s.updateLocked(sig, nil)
}

func (s *Session) handleChallenging(sig FrameSignals, now time.Time) FrameUpdate {
	if now.Sub(s.record.PhaseEnteredAt) > s.record.Timeouts.Challenge {
		s.retryOrFailLocked(now)
		return s.updateLocked(sig, guidance("challenge timed out"))
	}

	challenge := s.record.CurrentChallenge()
	if challenge == nil {
		// cursor already past the last challenge; should be unreachable
		s.transitionLocked(entities.PhaseVerifying, now)
		return s.updateLocked(sig, nil)
	}

	if !sig.FaceDetected || sig.FaceCount != 1 {
		ObserveStable(&s.record.ConsecutiveChallengePasses, false, s.cfg.StabilityThreshold)
		return s.updateLocked(sig, guidance("no face detected, keep your face in frame"))
	}

	satisfied, score := ChallengeSatisfied(s.cfg, *challenge, s.record.Baseline, sig)
	if !ObserveStable(&s.record.ConsecutiveChallengePasses, satisfied, s.cfg.StabilityThreshold) {
		return s.updateLocked(sig, challengeGuidance(*challenge, satisfied))
	}

	// stable pass: capture the challenge and advance the cursor
	s.record.Phase = entities.PhaseCapturing
	s.record.ChallengeResults = append(s.record.ChallengeResults, entities.ChallengeResult{
		Challenge:   *challenge,
		Passed:      true,
		Score:       score,
		CompletedAt: now,
	})
	s.record.CurrentChallengeIndex++
	s.clearChallengeStateLocked()

	captured := *challenge
	var update FrameUpdate
	if s.record.CurrentChallengeIndex < len(s.record.ChallengeSequence) {
		s.beginChallengeLocked(now)
		update = s.updateLocked(sig, nil)
	} else {
		s.stopChallengeTimerLocked()
		s.transitionLocked(entities.PhaseVerifying, now)
		update = s.updateLocked(sig, guidance("all challenges captured, call finalize"))
	}
	update.CapturedChallenge = &captured
	return update
}

// Finalize computes the verdict exactly once and is idempotent on terminal
// sessions. It is only valid once the session has reached the verifying
// phase.
func (s *Session) Finalize() (FinalResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalizeLocked(s.now())
}

func (s *Session) finalizeLocked(now time.Time) (FinalResult, error) {
	if s.result != nil {
		return *s.result, nil
	}
	if s.record.Phase == entities.PhaseFailed {
		result := FinalResult{
			SessionID:   s.record.ID,
			Verified:    false,
			Reason:      s.failure,
			Results:     s.record.ChallengeResults,
			CompletedAt: now,
		}
		s.result = &result
		return result, nil
	}
	if s.record.Phase != entities.PhaseVerifying {
		return FinalResult{}, ErrSessionNotReady
	}

	verdict := ComputeVerdict(s.cfg, s.record)
	if verdict.Verified {
		s.record.Phase = entities.PhaseCompleted
	} else {
		s.record.Phase = entities.PhaseFailed
		s.failure = verdict.Reason
	}
	s.record.PhaseEnteredAt = now
	s.stopTimersLocked()

	result := FinalResult{
		SessionID:   s.record.ID,
		Verified:    verdict.Verified,
		Reason:      verdict.Reason,
		Results:     s.record.ChallengeResults,
		CompletedAt: now,
	}
	s.result = &result
	logger.Info("liveness session finalized", logger.LoggerOptions{
		Key:  "sessionID",
		Data: s.record.ID,
	}, logger.LoggerOptions{
		Key:  "verified",
		Data: verdict.Verified,
	})
	s.fireTerminalLocked()
	return result, nil
}

// Abandon forces the session to failed. Caller disconnects are treated
// identically to a timeout: resources released, no partial verdict.
func (s *Session) Abandon(reason ReasonCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record.Phase.Terminal() {
		return
	}
	s.failLocked(reason, s.now())
}

func (s *Session) expire() {
	s.Abandon(ReasonSessionExpired)
}

// FailureReason returns the stored reason once the session has failed.
func (s *Session) FailureReason() *ReasonCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failure
}

func (s *Session) faceQualifies(sig FrameSignals) (bool, *string) {
	if !sig.FaceDetected || sig.FaceCount == 0 {
		return false, guidance("no face detected")
	}
	if sig.FaceCount > 1 {
		return false, guidance("multiple faces detected, only one person may be in frame")
	}
	if FaceAreaRatio(sig.Box, sig.FrameWidth, sig.FrameHeight) < s.cfg.MinFaceAreaRatio {
		return false, guidance("move closer to the camera")
	}
	if !FaceCentered(sig.Box, sig.FrameWidth, sig.FrameHeight, s.cfg.CenterRegionRatio) {
		return false, guidance("center your face in the frame")
	}
	return true, nil
}

func (s *Session) transitionLocked(phase entities.SessionPhase, now time.Time) {
	s.record.Phase = phase
	s.record.PhaseEnteredAt = now
}

// beginChallengeLocked enters (or re-enters) the challenging phase for the
// challenge under the cursor, with fresh debounce state.
func (s *Session) beginChallengeLocked(now time.Time) {
	s.clearChallengeStateLocked()
	s.transitionLocked(entities.PhaseChallenging, now)
	s.armChallengeTimerLocked()
}

func (s *Session) clearChallengeStateLocked() {
	s.record.ConsecutiveChallengePasses = 0
	s.record.ConsecutiveFaceDetections = 0
}

func (s *Session) retryOrFailLocked(now time.Time) {
	if s.record.RetryCount < s.cfg.MaxChallengeRetries {
		s.record.RetryCount++
		logger.Warning("liveness challenge timed out, retrying", logger.LoggerOptions{
			Key:  "sessionID",
			Data: s.record.ID,
		}, logger.LoggerOptions{
			Key:  "retryCount",
			Data: s.record.RetryCount,
		})
		s.beginChallengeLocked(now)
		return
	}
	if s.cfg.MaxChallengeRetries == 0 {
		s.failLocked(ReasonChallengeTimeout, now)
		return
	}
	s.failLocked(ReasonMaxRetriesExceeded, now)
}

func (s *Session) failLocked(reason ReasonCode, now time.Time) {
	s.record.Phase = entities.PhaseFailed
	s.record.PhaseEnteredAt = now
	s.failure = &reason
	s.stopTimersLocked()
	logger.Warning("liveness session failed", logger.LoggerOptions{
		Key:  "sessionID",
		Data: s.record.ID,
	}, logger.LoggerOptions{
		Key:  "reason",
		Data: reason,
	})
	s.fireTerminalLocked()
}

func (s *Session) fireTerminalLocked() {
	if s.onTerminal == nil {
		return
	}
	hook := s.onTerminal
	s.onTerminal = nil
	go hook(s)
}

func (s *Session) armChallengeTimerLocked() {
	s.stopChallengeTimerLocked()
	s.challengeTimerGen++
	gen := s.challengeTimerGen
	index := s.record.CurrentChallengeIndex
	s.challengeTimer = time.AfterFunc(s.record.Timeouts.Challenge, func() {
		s.onChallengeTimer(gen, index)
	})
}

func (s *Session) onChallengeTimer(gen, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.challengeTimerGen ||
		s.record.Phase != entities.PhaseChallenging ||
		s.record.CurrentChallengeIndex != index {
		return
	}
	s.retryOrFailLocked(s.now())
}

func (s *Session) stopChallengeTimerLocked() {
	if s.challengeTimer != nil {
		s.challengeTimer.Stop()
		s.challengeTimer = nil
	}
}

func (s *Session) stopTimersLocked() {
	s.stopChallengeTimerLocked()
	if s.sessionTimer != nil {
		s.sessionTimer.Stop()
		s.sessionTimer = nil
	}
}

func (s *Session) updateLocked(sig FrameSignals, hint *string) FrameUpdate {
	update := FrameUpdate{
		SessionID:      s.record.ID,
		Phase:          s.record.Phase,
		FaceDetected:   sig.FaceDetected,
		ChallengeIndex: s.record.CurrentChallengeIndex,
		ChallengeCount: len(s.record.ChallengeSequence),
		Guidance:       hint,
		Reason:         s.failure,
	}
	if sig.FaceDetected {
		box := sig.Box
		update.FaceBox = &box
	}
	if s.record.Phase == entities.PhaseChallenging {
		update.CurrentChallenge = s.record.CurrentChallenge()
	}
	if len(s.record.ChallengeSequence) > 0 {
		update.Progress = float64(len(s.record.ChallengeResults)) / float64(len(s.record.ChallengeSequence))
	}
	return update
}

func guidance(text string) *string {
	return &text
}

func challengeGuidance(challenge entities.ChallengeType, satisfied bool) *string {
	if satisfied {
		return guidance("hold it")
	}
	switch challenge {
	case entities.ChallengeSmile:
		return guidance("smile at the camera")
	case entities.ChallengeTurnLeft:
		return guidance("turn your head further to the left")
	case entities.ChallengeTurnRight:
		return guidance("turn your head further to the right")
	default:
		return guidance(fmt.Sprintf("perform the %s challenge", challenge))
	}
}
