package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"botfleet/internal/domain/registry"
)

func TestNew(t *testing.T) {
	e := registry.New("5511999990000", "ACME", "bot-1")

	assert.Equal(t, "5511999990000", e.Phone)
	assert.Equal(t, "ACME", e.Tenant)
	assert.Equal(t, "bot-1", e.BotID)
	assert.False(t, e.CreatedAt.IsZero())
}
