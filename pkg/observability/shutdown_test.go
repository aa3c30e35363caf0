package observability

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewShutdownManagerDefaults(t *testing.T) {
	log := NewLogger(ErrorLevel, &bytes.Buffer{})

	sm := NewShutdownManager(log, nil, 0)
	assert.Equal(t, 30*time.Second, sm.shutdownTimeout)

	sm = NewShutdownManager(log, nil, 5*time.Second)
	assert.Equal(t, 5*time.Second, sm.shutdownTimeout)
}

func TestRegisterShutdownFunc(t *testing.T) {
	log := NewLogger(ErrorLevel, &bytes.Buffer{})
	sm := NewShutdownManager(log, nil, time.Second)

	sm.RegisterShutdownFunc(func(ctx context.Context) error { return nil })
	sm.RegisterShutdownFunc(func(ctx context.Context) error { return nil })
	assert.Len(t, sm.shutdownFuncs, 2)
}
