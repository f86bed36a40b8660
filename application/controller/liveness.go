package controller

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	apperrors "facegate.io/application/appErrors"
	"facegate.io/application/constants"
	"facegate.io/application/controller/dto"
	"facegate.io/application/interfaces"
	"facegate.io/application/liveness"
	"facegate.io/entities"
	"facegate.io/infrastructure/auth"
	"facegate.io/infrastructure/database/repository/cache"
	"facegate.io/infrastructure/detector"
	detector_types "facegate.io/infrastructure/detector/types"
	"facegate.io/infrastructure/logger"
	messagequeue "facegate.io/infrastructure/message_queue"
	queue_tasks "facegate.io/infrastructure/message_queue/tasks"
	mq_types "facegate.io/infrastructure/message_queue/types"
	server_response "facegate.io/infrastructure/serverResponse"
	"facegate.io/infrastructure/validator"
	"github.com/google/uuid"
)

var livenessRegistry *liveness.SessionRegistry
var livenessConfig liveness.Config

// InitialiseLivenessController wires the session registry into the controller
// layer and hooks verdict side effects (device quota release, webhook
// delivery) onto session termination.
func InitialiseLivenessController(registry *liveness.SessionRegistry, cfg liveness.Config) {
	livenessRegistry = registry
	livenessConfig = cfg
	registry.SetOnTerminal(func(session *liveness.Session) {
		cache.Cache.DecrementEntry(deviceSessionsKey(session.DeviceID()))
		if session.WebhookURL() == nil {
			return
		}
		var reason *string
		if code := session.FailureReason(); code != nil {
			value := string(*code)
			reason = &value
		}
		payload, err := json.Marshal(queue_tasks.VerificationWebhookPayload{
			EventID:     uuid.NewString(),
			SessionID:   session.ID(),
			DeviceID:    session.DeviceID(),
			Verified:    session.Phase() == entities.PhaseCompleted,
			Reason:      reason,
			CompletedAt: time.Now(),
			WebhookURL:  *session.WebhookURL(),
		})
		if err != nil {
			logger.Error("could not marshal verification webhook payload", logger.LoggerOptions{
				Key:  "error",
				Data: err,
			}, logger.LoggerOptions{
				Key:  "sessionID",
				Data: session.ID(),
			})
			return
		}
		messagequeue.TaskQueue.Enqueue(mq_types.QueueTask{
			Name:     queue_tasks.HandleVerificationWebhookTaskName,
			Payload:  payload,
			Priority: mq_types.High,
			MaxRetry: 5,
			TimeOut:  15 * time.Second,
		})
	})
}

func deviceSessionsKey(deviceID string) string {
	return fmt.Sprintf("liveness-sessions-%s", deviceID)
}

func CreateLivenessSession(ctx *interfaces.ApplicationContext[dto.CreateSessionDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr, ctx.DeviceID)
		return
	}
	quotaTTL := livenessConfig.SessionTimeout + livenessConfig.TerminalLinger
	outstanding := cache.Cache.IncrementEntry(deviceSessionsKey(ctx.DeviceID), quotaTTL)
	if outstanding > int64(livenessConfig.MaxSessionsPerDevice) {
		cache.Cache.DecrementEntry(deviceSessionsKey(ctx.DeviceID))
		apperrors.TooManySessionsError(ctx.Ctx, &constants.SESSION_CAPACITY_REACHED, ctx.DeviceID)
		return
	}
	exclude := make([]entities.ChallengeType, 0, len(ctx.Body.ExcludeChallenges))
	for _, name := range ctx.Body.ExcludeChallenges {
		exclude = append(exclude, entities.ChallengeType(name))
	}
	session, err := livenessRegistry.Create(ctx.DeviceID, liveness.CreateOptions{
		NumChallenges:     ctx.Body.NumChallenges,
		ExcludeChallenges: exclude,
		WebhookURL:        ctx.Body.WebhookURL,
	})
	if err != nil {
		cache.Cache.DecrementEntry(deviceSessionsKey(ctx.DeviceID))
		if errors.Is(err, liveness.ErrRegistryCapacity) {
			apperrors.TooManySessionsError(ctx.Ctx, &constants.SESSION_CAPACITY_REACHED, ctx.DeviceID)
			return
		}
		apperrors.FatalServerError(ctx.Ctx, err, ctx.DeviceID)
		return
	}
	timeouts := session.Timeouts()
	server_response.Responder.Respond(ctx.Ctx, http.StatusCreated, "liveness session created", dto.CreateSessionResponse{
		SessionID:          session.ID(),
		ChallengeCount:     session.ChallengeCount(),
		SessionTimeoutMS:   timeouts.Session.Milliseconds(),
		ChallengeTimeoutMS: timeouts.Challenge.Milliseconds(),
		CountdownMS:        timeouts.Countdown.Milliseconds(),
	}, nil, nil, &ctx.DeviceID)
}

func SubmitLivenessFrame(ctx *interfaces.ApplicationContext[dto.SubmitFrameDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr, ctx.DeviceID)
		return
	}
	session, found := livenessRegistry.Get(ctx.GetStringParameter("id"))
	if !found {
		apperrors.NotFoundError(ctx.Ctx, "liveness session not found", &constants.SESSION_NOT_FOUND, &ctx.DeviceID)
		return
	}
	detection, err := detector.FaceDetector.DetectFaces(&ctx.Body.Image)
	if err != nil || !detection.Success {
		// transient; the session is untouched and the client can resubmit
		apperrors.ExternalDependencyError(ctx.Ctx, "face-detector", "500", err, &constants.DETECTOR_UNAVAILABLE, ctx.DeviceID)
		return
	}
	update := session.SubmitFrame(signalsFromDetection(detection))
	if update.Reason != nil && *update.Reason == liveness.ReasonSessionExpired {
		apperrors.GoneError(ctx.Ctx, "liveness session expired", &constants.SESSION_EXPIRED, &ctx.DeviceID)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "frame processed", update, nil, nil, &ctx.DeviceID)
}

func FinalizeLivenessSession(ctx *interfaces.ApplicationContext[any]) {
	session, found := livenessRegistry.Get(ctx.GetStringParameter("id"))
	if !found {
		apperrors.NotFoundError(ctx.Ctx, "liveness session not found", &constants.SESSION_NOT_FOUND, &ctx.DeviceID)
		return
	}
	result, err := session.Finalize()
	if err != nil {
		apperrors.ClientError(ctx.Ctx, "liveness session has not finished its challenge sequence", nil, nil, ctx.DeviceID)
		return
	}
	respondWithVerdict(ctx.Ctx, result, ctx.DeviceID)
}

func AbandonLivenessSession(ctx *interfaces.ApplicationContext[any]) {
	session, found := livenessRegistry.Get(ctx.GetStringParameter("id"))
	if !found {
		apperrors.NotFoundError(ctx.Ctx, "liveness session not found", &constants.SESSION_NOT_FOUND, &ctx.DeviceID)
		return
	}
	session.Abandon(liveness.ReasonSessionAbandoned)
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "liveness session abandoned", nil, nil, nil, &ctx.DeviceID)
}

func BatchVerifyLiveness(ctx *interfaces.ApplicationContext[dto.BatchVerifyDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr, ctx.DeviceID)
		return
	}
	session, found := livenessRegistry.Get(ctx.GetStringParameter("id"))
	if !found {
		apperrors.NotFoundError(ctx.Ctx, "liveness session not found", &constants.SESSION_NOT_FOUND, &ctx.DeviceID)
		return
	}
	baseline, ok := detectAll(ctx, ctx.Body.BaselineImages)
	if !ok {
		return
	}
	attempts := make([]liveness.BatchChallengeAttempt, 0, len(ctx.Body.Challenges))
	for _, group := range ctx.Body.Challenges {
		frames, ok := detectAll(ctx, group.Images)
		if !ok {
			return
		}
		attempts = append(attempts, liveness.BatchChallengeAttempt{
			Challenge: entities.ChallengeType(group.Challenge),
			Frames:    frames,
		})
	}
	result, err := session.RunBatch(baseline, attempts)
	if err != nil {
		if errors.Is(err, liveness.ErrSessionConsumed) {
			apperrors.ConflictError(ctx.Ctx, "liveness session already has interactive progress", nil, ctx.DeviceID)
			return
		}
		apperrors.FatalServerError(ctx.Ctx, err, ctx.DeviceID)
		return
	}
	respondWithVerdict(ctx.Ctx, result, ctx.DeviceID)
}

func RedeemVerdictToken(ctx *interfaces.ApplicationContext[dto.RedeemVerdictTokenDTO]) {
	validationErr := validator.ValidatorInstance.ValidateStruct(ctx.Body)
	if validationErr != nil {
		apperrors.ValidationFailedError(ctx.Ctx, validationErr, ctx.DeviceID)
		return
	}
	claims, err := auth.VerifyVerdictToken(ctx.Body.Token)
	if err != nil {
		if errors.Is(err, auth.ErrVerdictTokenUsed) {
			apperrors.ConflictError(ctx.Ctx, "verdict token has already been redeemed", &constants.VERDICT_TOKEN_ALREADY_USED, ctx.DeviceID)
			return
		}
		apperrors.ClientError(ctx.Ctx, "verdict token is invalid", nil, nil, ctx.DeviceID)
		return
	}
	server_response.Responder.Respond(ctx.Ctx, http.StatusOK, "verdict token redeemed", map[string]any{
		"session_id": claims.SessionID,
		"verified":   claims.Verified,
		"reason":     claims.Reason,
	}, nil, nil, &ctx.DeviceID)
}

func respondWithVerdict(ctx interface{}, result liveness.FinalResult, deviceID string) {
	var reason *string
	if result.Reason != nil {
		value := string(*result.Reason)
		reason = &value
	}
	token, err := auth.SignVerdictToken(result.SessionID, result.Verified, reason)
	if err != nil {
		logger.Error("could not sign verdict token", logger.LoggerOptions{
			Key:  "error",
			Data: err,
		}, logger.LoggerOptions{
			Key:  "sessionID",
			Data: result.SessionID,
		})
	}
	server_response.Responder.Respond(ctx, http.StatusOK, "liveness verdict computed", dto.FinalizeResponse{
		SessionID:    result.SessionID,
		Verified:     result.Verified,
		Reason:       reason,
		Results:      result.Results,
		VerdictToken: token,
	}, nil, nil, &deviceID)
}

// detectAll runs the detector over a batch group, mapping each image into
// engine signals. A detector failure aborts the whole request so the session
// is never fed a partial capture.
func detectAll[T any](ctx *interfaces.ApplicationContext[T], images []string) ([]liveness.FrameSignals, bool) {
	frames := make([]liveness.FrameSignals, 0, len(images))
	for i := range images {
		detection, err := detector.FaceDetector.DetectFaces(&images[i])
		if err != nil || !detection.Success {
			apperrors.ExternalDependencyError(ctx.Ctx, "face-detector", "500", err, &constants.DETECTOR_UNAVAILABLE, ctx.DeviceID)
			return nil, false
		}
		frames = append(frames, signalsFromDetection(detection))
	}
	return frames, true
}

// signalsFromDetection flattens the detector's response into what the engine
// consumes. Detector rotation is reported in radians; the engine works in
// degrees, so the conversion happens once, here at the boundary.
func signalsFromDetection(detection *detector_types.DetectionResponse) liveness.FrameSignals {
	sig := liveness.FrameSignals{
		FaceCount:   len(detection.Faces),
		FrameWidth:  detection.FrameWidth,
		FrameHeight: detection.FrameHeight,
	}
	if len(detection.Faces) == 0 {
		return sig
	}
	face := detection.Faces[0]
	sig.FaceDetected = true
	sig.Box = entities.FaceBox{
		X:      face.Box.X,
		Y:      face.Box.Y,
		Width:  face.Box.Width,
		Height: face.Box.Height,
	}
	sig.RealScore = face.RealScore
	sig.LiveScore = face.LiveScore
	sig.HappyScore = face.Expressions.Happy
	sig.YawDegrees = liveness.DegreesFromRadians(face.Rotation.Yaw)
	sig.PitchDegrees = liveness.DegreesFromRadians(face.Rotation.Pitch)
	sig.RollDegrees = liveness.DegreesFromRadians(face.Rotation.Roll)
	return sig
}
