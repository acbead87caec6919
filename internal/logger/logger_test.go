package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"console", "json", ""} {
		log, err := New("debug", format)
		require.NoError(t, err, format)
		assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
	}

	log, err := New("warn", "json")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
}

func TestNew_Errors(t *testing.T) {
	_, err := New("loud", "json")
	require.Error(t, err)

	_, err = New("info", "xml")
	require.Error(t, err)
}

func TestBotAPILogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewBotAPILogger(zap.New(core))

	l.Println("Endpoint:", "getUpdates")
	l.Printf("status %d", 200)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "Endpoint: getUpdates", entries[0].Message)
	assert.Equal(t, "status 200", entries[1].Message)
}
