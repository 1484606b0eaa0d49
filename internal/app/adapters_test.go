package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadrantlab/quadrant/internal/testutil"
)

func TestRepoLogger_PairsKeysAndValues(t *testing.T) {
	mock := testutil.NewMockLogger()
	logger := repoLogger{mock}

	logger.Info("query executed", "rows", 3, "table", "entries")

	messages := mock.GetMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "info", messages[0].Level)
	require.Len(t, messages[0].Fields, 2)
	assert.Equal(t, "rows", messages[0].Fields[0].Key)
	assert.Equal(t, 3, messages[0].Fields[0].Value)
	assert.Equal(t, "table", messages[0].Fields[1].Key)
}

func TestRepoLogger_NonStringKey(t *testing.T) {
	mock := testutil.NewMockLogger()
	logger := repoLogger{mock}

	logger.Warn("odd call", 42, "value")

	messages := mock.GetMessages()
	require.Len(t, messages, 1)
	assert.Equal(t, "arg", messages[0].Fields[0].Key)
}

func TestRepoLogger_DanglingKeyDropped(t *testing.T) {
	mock := testutil.NewMockLogger()
	logger := repoLogger{mock}

	logger.Error("lookup failed", "id")

	messages := mock.GetMessages()
	require.Len(t, messages, 1)
	assert.Empty(t, messages[0].Fields)
}
