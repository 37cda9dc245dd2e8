package telemetry

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	p, err := Init(Config{}, nil)
	require.NoError(t, err)
	require.NotNil(t, p.Meter)

	counter, err := p.Meter.Int64Counter("noop")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestInit_EnabledFlushesOnShutdown(t *testing.T) {
	var buf bytes.Buffer
	p, err := Init(Config{Enabled: true, Interval: time.Hour}, &buf)
	require.NoError(t, err)

	counter, err := p.Meter.Int64Counter("taskboard.test.counter")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Contains(t, buf.String(), "taskboard.test.counter")
}
