package utils

import (
	"testing"

	uuid "github.com/satori/go.uuid"
	"github.com/stretchr/testify/assert"
)

func TestUUID(t *testing.T) {
	id, err := uuid.FromString(UUID())
	assert.NoError(t, err)
	assert.Equal(t, byte(uuid.V4), id.Version())
	assert.NotEqual(t, UUID(), UUID())
}

func TestShortID(t *testing.T) {
	assert.Len(t, ShortID(), 8)
}
