package detector

import (
	"sync"

	"facegate.io/infrastructure/detector/types"
)

// SyntheticDetector replays scripted detection results. It exists so the
// engine and the transport layer can be exercised without the real vision
// model loaded, and is selected with DETECTOR_PROVIDER=synthetic.
type SyntheticDetector struct {
	mu        sync.Mutex
	Responses []*types.DetectionResponse
	cursor    int
}

func (d *SyntheticDetector) DetectFaces(image *string) (*types.DetectionResponse, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.Responses) == 0 {
		return &types.DetectionResponse{Success: true, FrameWidth: 640, FrameHeight: 480}, nil
	}
	response := d.Responses[d.cursor]
	if d.cursor < len(d.Responses)-1 {
		d.cursor++
	}
	return response, nil
}

// Enqueue appends one scripted response to the replay list.
func (d *SyntheticDetector) Enqueue(response *types.DetectionResponse) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Responses = append(d.Responses, response)
}
