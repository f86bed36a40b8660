package utils

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// GenerateULIDString returns a ULID backed by a CSPRNG entropy source so ids
// handed to clients cannot be guessed or derived.
func GenerateULIDString() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

func GetStringPointer(text string) *string {
	return &text
}

func GetBooleanPointer(data bool) *bool {
	return &data
}

func GetFloat64Pointer(data float64) *float64 {
	return &data
}

func GetUIntPointer(data uint) *uint {
	return &data
}

func HasItemString(arr *[]string, target string) bool {
	for _, v := range *arr {
		if v == target {
			return true
		}
	}
	return false
}
