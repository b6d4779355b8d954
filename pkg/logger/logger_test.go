package logger

import (
	"path/filepath"
	"testing"

	"corp_edu_backend/internal/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestApplyConfigChangesLevel(t *testing.T) {
	cfg := &config.Config{}
	cfg.Server.Mode = "release"
	cfg.Log.Level = "warn"
	cfg.Log.Filename = filepath.Join(t.TempDir(), "app.log")

	InitLogger(cfg)
	assert.Equal(t, zap.WarnLevel, Level())

	cfg.Log.Level = "error"
	ApplyConfig(cfg)
	assert.Equal(t, zap.ErrorLevel, Level())

	cfg.Server.Mode = "debug"
	ApplyConfig(cfg)
	assert.Equal(t, zap.DebugLevel, Level())
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "verbose"
	assert.Equal(t, zap.InfoLevel, levelFor(cfg))
}
