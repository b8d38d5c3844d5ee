package logging_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormkit/ormgen/internal/logging"
)

func TestNewJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := logging.New("info", logging.FormatJSON, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("hidden")
	logger.Info().Str("table", "Users").Msg("synced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Users", entry["table"])
	assert.Equal(t, "synced", entry["message"])
}

func TestNewConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := logging.New("debug", logging.FormatConsole, &buf)
	require.NoError(t, err)

	logger.Debug().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
	assert.Equal(t, zerolog.DebugLevel, logger.GetLevel())
}

func TestNewRejectsBadInput(t *testing.T) {
	t.Parallel()

	_, err := logging.New("loud", logging.FormatJSON, &bytes.Buffer{})
	require.Error(t, err)

	_, err = logging.New("info", "xml", &bytes.Buffer{})
	require.Error(t, err)
}

func TestQueryLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ql := logging.QueryLogger{Logger: zerolog.New(&buf).Level(zerolog.DebugLevel)}
	ql.Log(t.Context(), "SELECT [id] FROM [Users] WHERE [id] = @p1", 7)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "SELECT [id] FROM [Users] WHERE [id] = @p1", entry["sql"])
	assert.Equal(t, []any{float64(7)}, entry["args"])
}
