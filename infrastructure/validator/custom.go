package validator

import (
	"encoding/base64"
	"net/url"
	"strings"

	"facegate.io/application/constants"
	"github.com/go-playground/validator/v10"
)

func validateChallengeType(fl validator.FieldLevel) bool {
	challenge := fl.Field().String()
	return hasString(constants.AVAILABLE_CHALLENGE_TYPES, challenge)
}

// frame payloads are either a data/base64 blob or a fetchable https url
func validateFramePayload(fl validator.FieldLevel) bool {
	payload := fl.Field().String()
	if payload == "" {
		return false
	}
	if strings.HasPrefix(payload, "http://") || strings.HasPrefix(payload, "https://") {
		parsed, err := url.ParseRequestURI(payload)
		if err != nil {
			return false
		}
		host := parsed.Hostname()
		if host == "localhost" || host == "127.0.0.1" || host == "::1" {
			return false
		}
		return true
	}
	raw := payload
	if idx := strings.Index(raw, ";base64,"); idx != -1 {
		raw = raw[idx+len(";base64,"):]
	}
	_, err := base64.StdEncoding.DecodeString(raw)
	return err == nil
}

func hasString(arr []string, target string) bool {
	for _, v := range arr {
		if v == target {
			return true
		}
	}
	return false
}
