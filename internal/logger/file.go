package logger

import (
	"go.uber.org/zap"

	"github.com/playmatatu/pegfall/internal/config"
)

// NewFile builds a JSON logger that writes only to path. The terminal
// client uses it so log lines never land on the game screen.
func NewFile(cfg *config.Config, path string) (*zap.SugaredLogger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(parseLevel(cfg.LogLevel))
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}

	l, err := zc.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
