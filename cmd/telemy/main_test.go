package main

import (
	"context"
	"testing"

	"codeberg.org/mutker/telemy/internal/history"
	"codeberg.org/mutker/telemy/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryReader(t *testing.T) {
	ctx := context.Background()

	disabled, err := history.NewService(ctx, history.Config{Enabled: false}, logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, historyReader(false, disabled))

	enabled, err := history.NewService(ctx, history.DefaultConfig(), logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = enabled.Close() })

	reader := historyReader(true, enabled)
	require.NotNil(t, reader)
	points, err := reader.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, points)
}
