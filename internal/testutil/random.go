package testutil

import (
	"fmt"

	"github.com/google/uuid"
)

// RandomSuffix returns a short unique suffix for test fixtures.
func RandomSuffix() string {
	return uuid.NewString()[:8]
}

// RandomUsername returns a unique username with the given prefix.
func RandomUsername(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, RandomSuffix())
}

// RandomEmail returns a unique email address.
func RandomEmail() string {
	return fmt.Sprintf("user-%s@campus.test", RandomSuffix())
}
