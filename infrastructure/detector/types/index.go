package types

// FaceDetectorType is the boundary to the external computer-vision model.
// The engine never retrains or tunes the detector, only consumes its scores,
// so anything able to produce a DetectionResponse can stand in for it.
type FaceDetectorType interface {
	DetectFaces(image *string) (*DetectionResponse, error)
}

type DetectionResponse struct {
	Success          bool           `json:"success"`
	Error            *string        `json:"error"`
	FrameWidth       float64        `json:"frame_width"`
	FrameHeight      float64        `json:"frame_height"`
	Faces            []DetectedFace `json:"faces"`
	ProcessingTimeMs int            `json:"processing_time_ms"`
}

type DetectedFace struct {
	Box BoundingBox `json:"box"`

	// anti-spoof confidence that the frame is a live capture
	RealScore float64 `json:"real_score"`
	LiveScore float64 `json:"live_score"`

	Expressions ExpressionScores `json:"expressions"`

	// head rotation relative to camera-forward, in radians
	Rotation RotationAngles `json:"rotation"`

	// consumed by a separate face-matching service, not by this engine
	Embedding []float64 `json:"embedding,omitempty"`
}

type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type ExpressionScores struct {
	Happy     float64 `json:"happy"`
	Neutral   float64 `json:"neutral"`
	Sad       float64 `json:"sad"`
	Angry     float64 `json:"angry"`
	Surprised float64 `json:"surprised"`
}

type RotationAngles struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
}
