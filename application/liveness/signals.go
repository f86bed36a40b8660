package liveness

import (
	"math"

	"facegate.io/entities"
)

// FrameSignals is the engine-facing projection of one detector result for one
// frame. The transport layer builds it from whatever the detector returned;
// angles are already converted to degrees at that boundary.
type FrameSignals struct {
	FaceDetected bool
	FaceCount    int

	Box         entities.FaceBox
	FrameWidth  float64
	FrameHeight float64

	RealScore  float64
	LiveScore  float64
	HappyScore float64

	YawDegrees   float64
	PitchDegrees float64
	RollDegrees  float64
}

type Facing string

const (
	FacingLeft   Facing = "left"
	FacingRight  Facing = "right"
	FacingCenter Facing = "center"
)

// DegreesFromRadians converts a detector angle to degrees. Detectors report
// head rotation in radians; the rest of the engine works in degrees.
func DegreesFromRadians(radians float64) float64 {
	return radians * 180 / math.Pi
}

// FacingDirection discretizes yaw into left/right/center. Negative yaw is a
// turn to the subject's left.
func FacingDirection(cfg Config, yawDegrees float64) Facing {
	if math.Abs(yawDegrees) <= cfg.CenteredMaxYawDegrees {
		return FacingCenter
	}
	if yawDegrees < 0 {
		return FacingLeft
	}
	return FacingRight
}

// FaceAreaRatio returns the face box area as a fraction of the frame area.
func FaceAreaRatio(box entities.FaceBox, frameWidth, frameHeight float64) float64 {
	if frameWidth <= 0 || frameHeight <= 0 {
		return 0
	}
	return (box.Width * box.Height) / (frameWidth * frameHeight)
}

// FaceCentered reports whether the face box center falls within the middle
// region of the frame. regionRatio 0.6 means the middle 60% on both axes.
func FaceCentered(box entities.FaceBox, frameWidth, frameHeight, regionRatio float64) bool {
	if frameWidth <= 0 || frameHeight <= 0 {
		return false
	}
	centerX := box.X + box.Width/2
	centerY := box.Y + box.Height/2
	marginX := frameWidth * (1 - regionRatio) / 2
	marginY := frameHeight * (1 - regionRatio) / 2
	return centerX >= marginX && centerX <= frameWidth-marginX &&
		centerY >= marginY && centerY <= frameHeight-marginY
}

// BaselineFromSignals freezes the comparison point for later challenges.
func BaselineFromSignals(sig FrameSignals) *entities.BaselineSignals {
	return &entities.BaselineSignals{
		RealScore:    sig.RealScore,
		LiveScore:    sig.LiveScore,
		HappyScore:   sig.HappyScore,
		YawDegrees:   sig.YawDegrees,
		PitchDegrees: sig.PitchDegrees,
		RollDegrees:  sig.RollDegrees,
	}
}
