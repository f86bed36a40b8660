package liveness

import (
	"os"
	"strconv"
	"time"
)

// Config carries every threshold and timeout the engine applies. The values
// are part of the verification contract, not incidental code, so they are
// named here and snapshotted onto each session at creation.
type Config struct {
	// timing
	SessionTimeout    time.Duration
	ChallengeTimeout  time.Duration
	CountdownDuration time.Duration

	// debounce
	StabilityThreshold int

	// retry budget for a single session before it is forced to failed
	MaxChallengeRetries int

	// resource bounds
	MaxActiveSessions    int
	MaxSessionsPerDevice int
	TerminalLinger       time.Duration

	// smile challenge: clear improvement over the subject's own neutral
	// baseline, or an unambiguously high absolute score
	SmileMinScore      float64
	SmileMinDelta      float64
	SmileAbsoluteScore float64

	// turn challenge: absolute yaw in the required direction, or movement
	// from a centered baseline
	TurnMinYawDegrees     float64
	TurnMinDeltaDegrees   float64
	CenteredMaxYawDegrees float64

	// anti-spoof gate on the frozen baseline capture
	MinRealScore float64
	MinLiveScore float64

	// quality gate applied before the countdown starts
	MinFaceAreaRatio  float64
	CenterRegionRatio float64

	// challenge count clamp
	MinChallenges int
	MaxChallenges int
}

func DefaultConfig() Config {
	return Config{
		SessionTimeout:        time.Second * 60,
		ChallengeTimeout:      time.Second * 15,
		CountdownDuration:     time.Second * 2,
		StabilityThreshold:    2,
		MaxChallengeRetries:   2,
		MaxActiveSessions:     10_000,
		MaxSessionsPerDevice:  5,
		TerminalLinger:        time.Minute * 2,
		SmileMinScore:         0.60,
		SmileMinDelta:         0.10,
		SmileAbsoluteScore:    0.85,
		TurnMinYawDegrees:     18,
		TurnMinDeltaDegrees:   20,
		CenteredMaxYawDegrees: 10,
		MinRealScore:          0.5,
		MinLiveScore:          0.5,
		MinFaceAreaRatio:      0.08,
		CenterRegionRatio:     0.6,
		MinChallenges:         1,
		MaxChallenges:         3,
	}
}

// LoadConfig returns the defaults overridden by env where set. It is read
// once at startup; sessions snapshot whatever was active when they were
// created.
func LoadConfig() Config {
	cfg := DefaultConfig()
	cfg.SessionTimeout = envDuration("LIVENESS_SESSION_TIMEOUT_MS", cfg.SessionTimeout)
	cfg.ChallengeTimeout = envDuration("LIVENESS_CHALLENGE_TIMEOUT_MS", cfg.ChallengeTimeout)
	cfg.CountdownDuration = envDuration("LIVENESS_COUNTDOWN_MS", cfg.CountdownDuration)
	cfg.StabilityThreshold = envInt("LIVENESS_STABILITY_THRESHOLD", cfg.StabilityThreshold)
	cfg.MaxChallengeRetries = envInt("LIVENESS_MAX_CHALLENGE_RETRIES", cfg.MaxChallengeRetries)
	cfg.MaxActiveSessions = envInt("LIVENESS_MAX_ACTIVE_SESSIONS", cfg.MaxActiveSessions)
	cfg.MaxSessionsPerDevice = envInt("LIVENESS_MAX_SESSIONS_PER_DEVICE", cfg.MaxSessionsPerDevice)
	return cfg
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	ms, err := strconv.Atoi(raw)
	if err != nil || ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
