package queue_tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"facegate.io/infrastructure/logger"
	mq_types "facegate.io/infrastructure/message_queue/types"
	"facegate.io/infrastructure/network"
	"github.com/hibiken/asynq"
)

var HandleVerificationWebhookTaskName mq_types.Queues = "deliver_verification_webhook"

// VerificationWebhookPayload is the event delivered to the application's
// webhook once a liveness session reaches a terminal verdict. Capture frames
// never leave the service; only the verdict does.
type VerificationWebhookPayload struct {
	EventID     string    `json:"event_id"`
	SessionID   string    `json:"session_id"`
	DeviceID    string    `json:"device_id"`
	Verified    bool      `json:"verified"`
	Reason      *string   `json:"reason,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
	WebhookURL  string    `json:"webhook_url"`
}

func HandleVerificationWebhookTask(ctx context.Context, t *asynq.Task) error {
	var payload VerificationWebhookPayload
	err := json.Unmarshal(t.Payload(), &payload)
	if err != nil {
		logger.Error("an error occured while unmarshalling verification webhook payload", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		})
		return err
	}

	controller := &network.NetworkController{BaseUrl: payload.WebhookURL}
	_, statusCode, err := controller.Post("", map[string]string{
		"X-FaceGate-Event": string(HandleVerificationWebhookTaskName),
	}, payload)
	if err != nil {
		return err
	}
	if statusCode == nil || *statusCode < 200 || *statusCode > 299 {
		logger.Error("verification webhook was not accepted", logger.LoggerOptions{
			Key:  "sessionID",
			Data: payload.SessionID,
		}, logger.LoggerOptions{
			Key:  "status_code",
			Data: statusCode,
		})
		return fmt.Errorf("webhook delivery for session %s rejected", payload.SessionID)
	}
	logger.Info("verification webhook delivered", logger.LoggerOptions{
		Key:  "sessionID",
		Data: payload.SessionID,
	})
	return nil
}
