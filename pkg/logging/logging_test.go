package logging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLevelFor(t *testing.T) {
	require.Equal(t, zerolog.InfoLevel, levelFor(0))
	require.Equal(t, zerolog.DebugLevel, levelFor(1))
	require.Equal(t, zerolog.TraceLevel, levelFor(2))
	require.Equal(t, zerolog.TraceLevel, levelFor(5))
}

func TestSetup_NonDaemonized(t *testing.T) {
	logger, err := Setup(1, false)
	require.NoError(t, err)
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	logger.Debug().Msg("test")
}
