package detector

import (
	"encoding/json"

	"facegate.io/application/utils"
	"facegate.io/infrastructure/detector/types"
	"facegate.io/infrastructure/logger"
	"facegate.io/infrastructure/network"
)

// FaceGateDetect talks to the hosted face-detection model over HTTP.
type FaceGateDetect struct {
	Network *network.NetworkController
	APIKey  string
}

func (d *FaceGateDetect) DetectFaces(image *string) (*types.DetectionResponse, error) {
	requestBody := map[string]*string{
		"image": image,
	}

	response, statusCode, err := d.Network.Post("/detect", map[string]string{
		"x-api-key": d.APIKey,
	}, requestBody)
	if err != nil {
		logger.Error("error performing face detection", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}

	if statusCode == nil || *statusCode != 200 {
		logger.Error("face detection failed with status code", logger.LoggerOptions{
			Key:  "status_code",
			Data: statusCode,
		})
		return &types.DetectionResponse{
			Success: false,
			Error:   utils.GetStringPointer("face detection failed"),
		}, nil
	}

	var result types.DetectionResponse
	if err := json.Unmarshal(*response, &result); err != nil {
		logger.Error("error unmarshaling face detection response", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, err
	}

	return &result, nil
}
