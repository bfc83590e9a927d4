package util

import (
	"crypto/rand"
	"fmt"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// PlanIDLength is the number of characters in a generated plan ID.
const PlanIDLength = 12

// GenerateID returns an alphanumeric string of the given length using
// cryptographic randomness.
func GenerateID(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid id length %d", length)
	}

	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	for i := range bytes {
		bytes[i] = alphanumeric[int(bytes[i])%len(alphanumeric)]
	}

	return string(bytes), nil
}

// GeneratePlanID returns a new opaque plan identifier.
func GeneratePlanID() (string, error) {
	return GenerateID(PlanIDLength)
}
