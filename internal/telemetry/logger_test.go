package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoop_DiscardsCallsWithoutPanicking(t *testing.T) {
	l := Noop()
	assert.NotPanics(t, func() {
		l.Debugw("debug", "k", 1)
		l.Infow("info", "k", 1)
		l.Warnw("warn", "k", 1)
		l.Errorw("error", "k", 1)
		assert.NoError(t, l.Sync())
	})
}

func TestNewDevelopment_BuildsAWorkingLogger(t *testing.T) {
	l, err := NewDevelopment()
	assert.NoError(t, err)
	assert.NotNil(t, l)
	assert.NotPanics(t, func() { l.Infow("started", "mode", "development") })
}
