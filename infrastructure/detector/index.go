package detector

import (
	"os"

	"facegate.io/infrastructure/detector/types"
	"facegate.io/infrastructure/network"
)

var FaceDetector types.FaceDetectorType

func InitialiseFaceDetector() {
	if os.Getenv("DETECTOR_PROVIDER") == "synthetic" {
		FaceDetector = &SyntheticDetector{}
		return
	}
	FaceDetector = &FaceGateDetect{
		Network: &network.NetworkController{
			BaseUrl: os.Getenv("FACE_DETECTOR_BASE_URL"),
		},
		APIKey: os.Getenv("FACE_DETECTOR_API_KEY"),
	}
}
