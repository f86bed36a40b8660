package dto

// CreateSessionDTO represents the request to start a liveness capture
// session. The challenge count is a hint, the server clamps it.
type CreateSessionDTO struct {
	NumChallenges     int      `json:"num_challenges,omitempty"`
	ExcludeChallenges []string `json:"exclude_challenges,omitempty" validate:"omitempty,dive,challenge_type"`
	WebhookURL        *string  `json:"webhook_url,omitempty" validate:"omitempty,url"`
}

// CreateSessionResponse deliberately reveals only the challenge count and the
// timing contract; challenge types surface one step at a time through frame
// submissions.
type CreateSessionResponse struct {
	SessionID          string `json:"session_id"`
	ChallengeCount     int    `json:"challenge_count"`
	SessionTimeoutMS   int64  `json:"session_timeout_ms"`
	ChallengeTimeoutMS int64  `json:"challenge_timeout_ms"`
	CountdownMS        int64  `json:"countdown_ms"`
}

// SubmitFrameDTO represents one captured frame, as a base64 blob or a
// fetchable https url
type SubmitFrameDTO struct {
	Image string `json:"image" validate:"required,frame_payload"`
}

// BatchChallengeDTO is one labeled group of frames in the batch shape of the
// protocol.
type BatchChallengeDTO struct {
	Challenge string   `json:"challenge" validate:"required,challenge_type"`
	Images    []string `json:"images" validate:"required,min=1,max=10,dive,frame_payload"`
}

// BatchVerifyDTO submits the whole capture in one call: baseline frames
// first, then one group per assigned challenge in the assigned order.
type BatchVerifyDTO struct {
	BaselineImages []string            `json:"baseline_images" validate:"required,min=1,max=10,dive,frame_payload"`
	Challenges     []BatchChallengeDTO `json:"challenges" validate:"required,min=1,max=3,dive"`
}

type RedeemVerdictTokenDTO struct {
	Token string `json:"token" validate:"required"`
}

type FinalizeResponse struct {
	SessionID    string      `json:"session_id"`
	Verified     bool        `json:"verified"`
	Reason       *string     `json:"reason,omitempty"`
	Results      interface{} `json:"per_challenge_results"`
	VerdictToken string      `json:"verdict_token,omitempty"`
}
