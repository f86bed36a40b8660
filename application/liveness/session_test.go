package liveness

import (
	"testing"
	"time"

	"facegate.io/entities"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// newTestSession builds a session with a fixed challenge sequence and a
// controllable clock.
func newTestSession(t *testing.T, cfg Config, sequence []entities.ChallengeType) (*Session, *fakeClock) {
	t.Helper()
	s, err := NewSession(cfg, "device-1", CreateOptions{NumChallenges: len(sequence)})
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	clock := &fakeClock{current: s.record.StartedAt}
	s.now = clock.Now
	s.record.ChallengeSequence = sequence
	s.stopTimersLocked()
	return s, clock
}

func neutralFrame() FrameSignals {
	return FrameSignals{
		FaceDetected: true,
		FaceCount:    1,
		Box:          entities.FaceBox{X: 170, Y: 90, Width: 300, Height: 300},
		FrameWidth:   640,
		FrameHeight:  480,
		RealScore:    0.9,
		LiveScore:    0.9,
		HappyScore:   0.20,
		YawDegrees:   0,
	}
}

func noFaceFrame() FrameSignals {
	return FrameSignals{FrameWidth: 640, FrameHeight: 480}
}

// drives a fresh session up to the challenging phase with a frozen neutral
// baseline
func reachChallenging(t *testing.T, s *Session, clock *fakeClock) {
	t.Helper()
	s.SubmitFrame(neutralFrame())
	update := s.SubmitFrame(neutralFrame())
	if update.Phase != entities.PhaseCountdown {
		t.Fatalf("phase after stable detection = %s, want %s", update.Phase, entities.PhaseCountdown)
	}
	clock.Advance(s.record.Timeouts.Countdown + time.Millisecond*100)
	update = s.SubmitFrame(neutralFrame())
	if update.Phase != entities.PhaseChallenging {
		t.Fatalf("phase after baseline capture = %s, want %s", update.Phase, entities.PhaseChallenging)
	}
	if s.record.Baseline == nil {
		t.Fatal("baseline signals were not frozen")
	}
}

func TestSessionEndToEnd(t *testing.T) {
	cfg := DefaultConfig()
	s, clock := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeSmile, entities.ChallengeTurnRight})

	reachChallenging(t, s, clock)
	if got := *s.record.CurrentChallenge(); got != entities.ChallengeSmile {
		t.Fatalf("first challenge = %s, want smile", got)
	}

	smiling := neutralFrame()
	smiling.HappyScore = 0.70
	update := s.SubmitFrame(smiling)
	if update.CapturedChallenge != nil {
		t.Fatal("single passing frame must not complete a challenge")
	}
	update = s.SubmitFrame(smiling)
	if update.CapturedChallenge == nil || *update.CapturedChallenge != entities.ChallengeSmile {
		t.Fatalf("smile challenge not captured after two stable frames: %+v", update)
	}
	if update.CurrentChallenge == nil || *update.CurrentChallenge != entities.ChallengeTurnRight {
		t.Fatalf("next challenge not revealed, got %+v", update.CurrentChallenge)
	}

	turned := neutralFrame()
	turned.YawDegrees = 22
	s.SubmitFrame(turned)
	update = s.SubmitFrame(turned)
	if update.Phase != entities.PhaseVerifying {
		t.Fatalf("phase after final challenge = %s, want %s", update.Phase, entities.PhaseVerifying)
	}

	result, err := s.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if !result.Verified {
		t.Fatalf("verdict not verified, reason %v", result.Reason)
	}
	if len(result.Results) != 2 {
		t.Fatalf("result count = %d, want 2", len(result.Results))
	}
	if result.Results[0].Challenge != entities.ChallengeSmile || result.Results[1].Challenge != entities.ChallengeTurnRight {
		t.Errorf("results out of order: %+v", result.Results)
	}
	if s.Phase() != entities.PhaseCompleted {
		t.Errorf("phase = %s, want completed", s.Phase())
	}
}

func TestSessionDebouncePatternInDetecting(t *testing.T) {
	cfg := DefaultConfig()
	s, _ := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeTurnLeft})

	// [true, false, true, true]: transition must only fire on the final frame
	update := s.SubmitFrame(neutralFrame())
	if update.Phase != entities.PhaseDetecting {
		t.Fatalf("after first true: phase = %s, want detecting", update.Phase)
	}
	update = s.SubmitFrame(noFaceFrame())
	if update.Phase != entities.PhaseDetecting {
		t.Fatalf("after false: phase = %s, want detecting", update.Phase)
	}
	update = s.SubmitFrame(neutralFrame())
	if update.Phase != entities.PhaseDetecting {
		t.Fatalf("after true following reset: phase = %s, want detecting", update.Phase)
	}
	update = s.SubmitFrame(neutralFrame())
	if update.Phase != entities.PhaseCountdown {
		t.Fatalf("after two consecutive trues: phase = %s, want countdown", update.Phase)
	}
}

func TestSessionQualityGate(t *testing.T) {
	cfg := DefaultConfig()
	s, _ := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeTurnLeft})

	tiny := neutralFrame()
	tiny.Box = entities.FaceBox{X: 300, Y: 220, Width: 40, Height: 40}
	for i := 0; i < 4; i++ {
		update := s.SubmitFrame(tiny)
		if update.Phase != entities.PhaseDetecting {
			t.Fatalf("undersized face advanced the phase to %s", update.Phase)
		}
		if update.Guidance == nil {
			t.Fatal("undersized face should produce guidance")
		}
	}
}

func TestSessionExpiry(t *testing.T) {
	cfg := DefaultConfig()
	s, clock := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeTurnLeft})

	clock.Advance(cfg.SessionTimeout + time.Second)
	update := s.SubmitFrame(neutralFrame())
	if update.Phase != entities.PhaseFailed {
		t.Fatalf("phase = %s, want failed", update.Phase)
	}
	if update.Reason == nil || *update.Reason != ReasonSessionExpired {
		t.Fatalf("reason = %v, want %s", update.Reason, ReasonSessionExpired)
	}

	// terminal sessions reject further input with the stored reason
	update = s.SubmitFrame(neutralFrame())
	if update.Phase != entities.PhaseFailed || update.Reason == nil || *update.Reason != ReasonSessionExpired {
		t.Fatalf("terminal session accepted input: %+v", update)
	}

	result, err := s.Finalize()
	if err != nil {
		t.Fatalf("Finalize on failed session: %v", err)
	}
	if result.Verified {
		t.Error("expired session must not verify")
	}
}

func TestSessionChallengeTimeoutRetriesThenFails(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxChallengeRetries = 1
	s, clock := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeTurnLeft})
	reachChallenging(t, s, clock)

	clock.Advance(cfg.ChallengeTimeout + time.Second)
	update := s.SubmitFrame(neutralFrame())
	if update.Phase != entities.PhaseChallenging {
		t.Fatalf("first timeout should retry, phase = %s", update.Phase)
	}
	if s.record.RetryCount != 1 {
		t.Fatalf("retryCount = %d, want 1", s.record.RetryCount)
	}

	clock.Advance(cfg.ChallengeTimeout + time.Second)
	update = s.SubmitFrame(neutralFrame())
	if update.Phase != entities.PhaseFailed {
		t.Fatalf("second timeout should fail, phase = %s", update.Phase)
	}
	if update.Reason == nil || *update.Reason != ReasonMaxRetriesExceeded {
		t.Fatalf("reason = %v, want %s", update.Reason, ReasonMaxRetriesExceeded)
	}
}

func TestSessionChallengeTimeoutWithoutRetries(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxChallengeRetries = 0
	s, clock := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeTurnLeft})
	reachChallenging(t, s, clock)

	clock.Advance(cfg.ChallengeTimeout + time.Second)
	update := s.SubmitFrame(neutralFrame())
	if update.Phase != entities.PhaseFailed {
		t.Fatalf("phase = %s, want failed", update.Phase)
	}
	if update.Reason == nil || *update.Reason != ReasonChallengeTimeout {
		t.Fatalf("reason = %v, want %s", update.Reason, ReasonChallengeTimeout)
	}
}

func TestSessionAbandon(t *testing.T) {
	cfg := DefaultConfig()
	s, clock := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeTurnLeft})
	reachChallenging(t, s, clock)

	s.Abandon(ReasonSessionAbandoned)
	result, err := s.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if result.Verified {
		t.Error("abandoned session must not verify")
	}
	if result.Reason == nil || *result.Reason != ReasonSessionAbandoned {
		t.Errorf("reason = %v, want %s", result.Reason, ReasonSessionAbandoned)
	}
}

func TestSessionFinalizeBeforeVerifying(t *testing.T) {
	cfg := DefaultConfig()
	s, _ := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeTurnLeft})
	if _, err := s.Finalize(); err != ErrSessionNotReady {
		t.Fatalf("Finalize before verifying returned %v, want ErrSessionNotReady", err)
	}
}

func TestSessionFinalizeIsIdempotent(t *testing.T) {
	cfg := DefaultConfig()
	s, clock := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeTurnRight})
	reachChallenging(t, s, clock)

	turned := neutralFrame()
	turned.YawDegrees = 22
	s.SubmitFrame(turned)
	s.SubmitFrame(turned)

	first, err := s.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	second, err := s.Finalize()
	if err != nil {
		t.Fatalf("second Finalize: %v", err)
	}
	if first.Verified != second.Verified || !first.CompletedAt.Equal(second.CompletedAt) {
		t.Error("Finalize is not idempotent on a terminal session")
	}
}

func TestSessionSpoofedBaselineFailsVerdict(t *testing.T) {
	cfg := DefaultConfig()
	s, clock := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeTurnRight})

	spoofed := neutralFrame()
	spoofed.RealScore = 0.3
	s.SubmitFrame(spoofed)
	s.SubmitFrame(spoofed)
	clock.Advance(cfg.CountdownDuration + time.Millisecond*100)
	s.SubmitFrame(spoofed)

	turned := spoofed
	turned.YawDegrees = 22
	s.SubmitFrame(turned)
	update := s.SubmitFrame(turned)
	if update.Phase != entities.PhaseVerifying {
		t.Fatalf("phase = %s, want verifying", update.Phase)
	}

	result, err := s.Finalize()
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if result.Verified {
		t.Fatal("spoofed baseline must never verify, even with passing challenges")
	}
	if result.Reason == nil || *result.Reason != ReasonSpoofSuspected {
		t.Errorf("reason = %v, want %s", result.Reason, ReasonSpoofSuspected)
	}
}

func TestBatchEndToEnd(t *testing.T) {
	cfg := DefaultConfig()
	s, _ := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeSmile, entities.ChallengeTurnRight})

	smiling := neutralFrame()
	smiling.HappyScore = 0.70
	turned := neutralFrame()
	turned.YawDegrees = 22

	result, err := s.RunBatch(
		[]FrameSignals{neutralFrame(), neutralFrame()},
		[]BatchChallengeAttempt{
			{Challenge: entities.ChallengeSmile, Frames: []FrameSignals{smiling, smiling}},
			{Challenge: entities.ChallengeTurnRight, Frames: []FrameSignals{turned, turned}},
		},
	)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if !result.Verified {
		t.Fatalf("batch verdict not verified, reason %v", result.Reason)
	}
	if len(result.Results) != 2 {
		t.Fatalf("result count = %d, want 2", len(result.Results))
	}
}

func TestBatchSequenceMismatch(t *testing.T) {
	cfg := DefaultConfig()
	s, _ := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeSmile, entities.ChallengeTurnRight})

	smiling := neutralFrame()
	smiling.HappyScore = 0.70
	turned := neutralFrame()
	turned.YawDegrees = 22

	// groups submitted in an order that differs from the assigned sequence
	result, err := s.RunBatch(
		[]FrameSignals{neutralFrame(), neutralFrame()},
		[]BatchChallengeAttempt{
			{Challenge: entities.ChallengeTurnRight, Frames: []FrameSignals{turned, turned}},
			{Challenge: entities.ChallengeSmile, Frames: []FrameSignals{smiling, smiling}},
		},
	)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if result.Verified {
		t.Fatal("out-of-order batch must never produce a partial pass")
	}
	if result.Reason == nil || *result.Reason != ReasonChallengeSequenceMismatch {
		t.Errorf("reason = %v, want %s", result.Reason, ReasonChallengeSequenceMismatch)
	}
}

func TestBatchDebounceRequiresConsecutiveFrames(t *testing.T) {
	cfg := DefaultConfig()
	s, _ := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeTurnRight})

	turned := neutralFrame()
	turned.YawDegrees = 22

	// a single satisfying frame per group can never reach a threshold of two
	result, err := s.RunBatch(
		[]FrameSignals{neutralFrame(), neutralFrame()},
		[]BatchChallengeAttempt{
			{Challenge: entities.ChallengeTurnRight, Frames: []FrameSignals{turned, neutralFrame(), turned}},
		},
	)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if result.Verified {
		t.Fatal("non-consecutive satisfying frames must not pass the debounce")
	}
	if result.Reason == nil || *result.Reason != ReasonChallengeFailed {
		t.Errorf("reason = %v, want %s", result.Reason, ReasonChallengeFailed)
	}
}

func TestBatchOnConsumedSession(t *testing.T) {
	cfg := DefaultConfig()
	s, _ := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeTurnRight})
	s.SubmitFrame(neutralFrame())

	_, err := s.RunBatch([]FrameSignals{neutralFrame()}, nil)
	if err != ErrSessionConsumed {
		t.Fatalf("RunBatch on a consumed session returned %v, want ErrSessionConsumed", err)
	}
}

func TestBatchIncompleteSequence(t *testing.T) {
	cfg := DefaultConfig()
	s, _ := newTestSession(t, cfg, []entities.ChallengeType{entities.ChallengeSmile, entities.ChallengeTurnRight})

	smiling := neutralFrame()
	smiling.HappyScore = 0.70

	result, err := s.RunBatch(
		[]FrameSignals{neutralFrame(), neutralFrame()},
		[]BatchChallengeAttempt{
			{Challenge: entities.ChallengeSmile, Frames: []FrameSignals{smiling, smiling}},
		},
	)
	if err != nil {
		t.Fatalf("RunBatch: %v", err)
	}
	if result.Verified {
		t.Fatal("a batch missing challenge groups must not verify")
	}
	if result.Reason == nil || *result.Reason != ReasonIncompleteSequence {
		t.Errorf("reason = %v, want %s", result.Reason, ReasonIncompleteSequence)
	}
}
