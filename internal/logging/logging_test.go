package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetupWriterLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWriter(&buf, "warn", false)

	logger.Info().Msg("hidden")
	logger.Warn().Str("id", "7").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"id":"7"`)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())
}

func TestSetupWriterUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := SetupWriter(&buf, "loud", false)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
