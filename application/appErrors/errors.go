package apperrors

import (
	"fmt"
	"net/http"

	"facegate.io/infrastructure/logger"
	server_response "facegate.io/infrastructure/serverResponse"
)

func NotFoundError(ctx interface{}, message string, responseCode *uint, deviceID *string) {
	server_response.Responder.Respond(ctx, http.StatusNotFound, message, nil, nil, responseCode, deviceID)
}

func GoneError(ctx interface{}, message string, responseCode *uint, deviceID *string) {
	server_response.Responder.Respond(ctx, http.StatusGone, message, nil, nil, responseCode, deviceID)
}

func ValidationFailedError(ctx interface{}, errMessages *[]error, deviceID string) {
	server_response.Responder.Respond(ctx, http.StatusUnprocessableEntity, "payload validation failed", nil, *errMessages, nil, &deviceID)
}

func ClientError(ctx interface{}, msg string, errs []error, responseCode *uint, deviceID string) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, msg, nil, errs, responseCode, &deviceID)
}

func ConflictError(ctx interface{}, msg string, responseCode *uint, deviceID string) {
	server_response.Responder.Respond(ctx, http.StatusConflict, msg, nil, nil, responseCode, &deviceID)
}

func TooManySessionsError(ctx interface{}, responseCode *uint, deviceID string) {
	server_response.Responder.Respond(ctx, http.StatusTooManyRequests,
		"you have too many capture sessions in flight. complete or abandon one and try again.", nil, nil, responseCode, &deviceID)
}

func ExternalDependencyError(ctx interface{}, serviceName string, statusCode string, err error, responseCode *uint, deviceID string) {
	// err is nil when the dependency answered with a non-2xx status rather
	// than a transport failure
	msg := fmt.Sprintf("error with %s. status code %s", serviceName, statusCode)
	if err != nil {
		logger.Error(err.Error(), logger.LoggerOptions{
			Key: msg,
		})
	} else {
		logger.Error(msg)
	}
	server_response.Responder.Respond(ctx, http.StatusServiceUnavailable,
		"a collaborating service is temporarily unavailable. resubmit the frame shortly.", nil, nil, responseCode, &deviceID)
}

func ErrorProcessingPayload(ctx interface{}, deviceID *string) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, "abnormal payload passed", nil, nil, nil, deviceID)
}

func FatalServerError(ctx interface{}, err error, deviceID string) {
	logger.Error("fatal server error", logger.LoggerOptions{
		Key:  "error",
		Data: err,
	})
	server_response.Responder.Respond(ctx, http.StatusInternalServerError,
		"our service is temporarily down. our team is working to fix it. please check back later.", nil, nil, nil, &deviceID)
}

func UnknownError(ctx interface{}, err error, responseCode *uint, deviceID string) {
	logger.Error("unknown error", logger.LoggerOptions{
		Key:  "error",
		Data: err,
	})
	server_response.Responder.Respond(ctx, http.StatusBadRequest,
		"something went wrong somewhere. please check back later.", nil, nil, responseCode, &deviceID)
}

func CustomError(ctx interface{}, msg string, responseCode *uint, deviceID string) {
	server_response.Responder.Respond(ctx, http.StatusBadRequest, msg, nil, nil, responseCode, &deviceID)
}
