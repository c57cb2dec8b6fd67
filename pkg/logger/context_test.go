package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/pacer/pkg/logger"
)

func TestQueueContextRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, ok := logger.QueueFromContext(ctx)
	assert.False(t, ok)

	ctx = logger.ContextWithQueue(ctx, "webhooks")
	name, ok := logger.QueueFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "webhooks", name)
}

func TestItemContextRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, ok := logger.ItemFromContext(ctx)
	assert.False(t, ok)

	id := uuid.New()
	ctx = logger.ContextWithItem(ctx, id)
	got, ok := logger.ItemFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestExtractorsAnnotateRecords(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithJSONFormatter(),
		logger.WithContextExtractors(logger.QueueExtractor(), logger.ItemExtractor()),
	)

	id := uuid.New()
	ctx := logger.ContextWithQueue(context.Background(), "emails")
	ctx = logger.ContextWithItem(ctx, id)

	log.InfoContext(ctx, "task settled")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "emails", record["queue"])
	assert.Equal(t, id.String(), record["item_id"])
}

func TestExtractorsSkipUntaggedContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithJSONFormatter(),
		logger.WithContextExtractors(logger.QueueExtractor(), logger.ItemExtractor()),
	)

	log.InfoContext(context.Background(), "no task in flight")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.NotContains(t, record, "queue")
	assert.NotContains(t, record, "item_id")
}
