package network

import (
	"time"

	"facegate.io/infrastructure/logger"
	"github.com/imroc/req"
)

func init() {
	req.SetTimeout(time.Second * 30)
}

// NetworkController wraps outbound HTTP calls to collaborating services.
type NetworkController struct {
	BaseUrl string
}

func (network *NetworkController) Post(path string, headers map[string]string, body interface{}) (*[]byte, *int, error) {
	reqHeaders := req.Header{
		"Content-Type": "application/json",
	}
	for key, value := range headers {
		reqHeaders[key] = value
	}
	response, err := req.Post(network.BaseUrl+path, reqHeaders, req.BodyJSON(body))
	if err != nil {
		logger.Error("network POST failed", logger.LoggerOptions{
			Key:  "url",
			Data: network.BaseUrl + path,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, nil, err
	}
	statusCode := response.Response().StatusCode
	payload, err := response.ToBytes()
	if err != nil {
		return nil, &statusCode, err
	}
	return &payload, &statusCode, nil
}

func (network *NetworkController) Get(path string, headers map[string]string) (*[]byte, *int, error) {
	reqHeaders := req.Header{}
	for key, value := range headers {
		reqHeaders[key] = value
	}
	response, err := req.Get(network.BaseUrl+path, reqHeaders)
	if err != nil {
		logger.Error("network GET failed", logger.LoggerOptions{
			Key:  "url",
			Data: network.BaseUrl + path,
		}, logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return nil, nil, err
	}
	statusCode := response.Response().StatusCode
	payload, err := response.ToBytes()
	if err != nil {
		return nil, &statusCode, err
	}
	return &payload, &statusCode, nil
}
