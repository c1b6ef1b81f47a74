package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	old := *L()
	defer SetLogger(old)

	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	L().Info().Str("file", "a.gsd").Msg("opened")
	assert.Contains(t, buf.String(), `"file":"a.gsd"`)
	assert.Contains(t, buf.String(), `"message":"opened"`)
}

func TestInitLevel(t *testing.T) {
	old := *L()
	defer SetLogger(old)

	Init(false, false)
	assert.Equal(t, zerolog.InfoLevel, L().GetLevel())
	Init(true, true)
	assert.Equal(t, zerolog.DebugLevel, L().GetLevel())
}
