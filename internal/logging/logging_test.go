package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWriter(t *testing.T) {
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	t.Run("JSON output carries fields", func(t *testing.T) {
		var buf bytes.Buffer
		SetupWriter(&buf, "debug", "json")

		log.Debug().Str("list_id", "abc").Msg("hello")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "hello", entry["message"])
		assert.Equal(t, "abc", entry["list_id"])
		assert.Equal(t, "debug", entry["level"])
	})

	t.Run("Unknown level falls back to info", func(t *testing.T) {
		var buf bytes.Buffer
		SetupWriter(&buf, "loud", "json")

		log.Debug().Msg("hidden")
		assert.Empty(t, buf.String())
		assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
	})
}
