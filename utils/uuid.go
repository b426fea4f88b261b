package utils

import (
	uuid "github.com/satori/go.uuid"
)

// UUID returns a random v4 uuid.
func UUID() string {
	return uuid.NewV4().String()
}

// ShortID returns the first block of a random uuid, for test key prefixes.
func ShortID() string {
	id := uuid.NewV4()
	return id.String()[:8]
}
