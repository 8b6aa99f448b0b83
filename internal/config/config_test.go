package config

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerDefaultsToInfoAndText(t *testing.T) {
	logger, err := NewLogger(LogConfig{})
	require.NoError(t, err)
	require.Equal(t, logrus.InfoLevel, logger.GetLevel())
	_, isText := logger.Formatter.(*logrus.TextFormatter)
	require.True(t, isText)
}

func TestNewLoggerJSONFormat(t *testing.T) {
	logger, err := NewLogger(LogConfig{Format: "json", Level: "debug"})
	require.NoError(t, err)
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())
	_, isJSON := logger.Formatter.(*logrus.JSONFormatter)
	require.True(t, isJSON)
}

func TestNewLoggerInvalidLevelFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "nonsense"})
	require.NoError(t, err)
	require.Equal(t, logrus.InfoLevel, logger.GetLevel())
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := t.TempDir() + "/asdl.log"
	logger, err := NewLogger(LogConfig{File: path})
	require.NoError(t, err)
	logger.Info("hello")
}
