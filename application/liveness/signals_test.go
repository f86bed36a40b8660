package liveness

import (
	"math"
	"testing"

	"facegate.io/entities"
)

func TestDegreesFromRadians(t *testing.T) {
	tests := []struct {
		radians float64
		want    float64
	}{
		{radians: 0, want: 0},
		{radians: math.Pi, want: 180},
		{radians: -math.Pi / 2, want: -90},
		{radians: math.Pi / 6, want: 30},
	}
	for _, tt := range tests {
		got := DegreesFromRadians(tt.radians)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("DegreesFromRadians(%v) = %v, want %v", tt.radians, got, tt.want)
		}
	}
}

func TestFacingDirection(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		yaw  float64
		want Facing
	}{
		{yaw: 0, want: FacingCenter},
		{yaw: 10, want: FacingCenter},
		{yaw: -10, want: FacingCenter},
		{yaw: 10.5, want: FacingRight},
		{yaw: -10.5, want: FacingLeft},
		{yaw: 45, want: FacingRight},
		{yaw: -45, want: FacingLeft},
	}
	for _, tt := range tests {
		if got := FacingDirection(cfg, tt.yaw); got != tt.want {
			t.Errorf("FacingDirection(%v) = %v, want %v", tt.yaw, got, tt.want)
		}
	}
}

func TestFaceAreaRatio(t *testing.T) {
	box := entities.FaceBox{X: 0, Y: 0, Width: 320, Height: 240}
	got := FaceAreaRatio(box, 640, 480)
	if math.Abs(got-0.25) > 1e-9 {
		t.Errorf("FaceAreaRatio = %v, want 0.25", got)
	}
	if FaceAreaRatio(box, 0, 480) != 0 {
		t.Error("zero frame dimensions should yield ratio 0")
	}
}

func TestFaceCentered(t *testing.T) {
	tests := []struct {
		name string
		box  entities.FaceBox
		want bool
	}{
		{
			name: "centered face",
			box:  entities.FaceBox{X: 220, Y: 140, Width: 200, Height: 200},
			want: true,
		},
		{
			name: "face hugging the left edge",
			box:  entities.FaceBox{X: 0, Y: 140, Width: 100, Height: 200},
			want: false,
		},
		{
			name: "face hugging the bottom edge",
			box:  entities.FaceBox{X: 220, Y: 400, Width: 200, Height: 80},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FaceCentered(tt.box, 640, 480, 0.6); got != tt.want {
				t.Errorf("FaceCentered = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBaselineFromSignals(t *testing.T) {
	sig := FrameSignals{
		RealScore:  0.9,
		LiveScore:  0.8,
		HappyScore: 0.2,
		YawDegrees: 5,
	}
	baseline := BaselineFromSignals(sig)
	if baseline.RealScore != 0.9 || baseline.LiveScore != 0.8 ||
		baseline.HappyScore != 0.2 || baseline.YawDegrees != 5 {
		t.Errorf("baseline snapshot mismatch: %+v", baseline)
	}
}
