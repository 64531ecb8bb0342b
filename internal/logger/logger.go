// Package logger builds the zap logger shared by the server and its
// background workers.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON production logger when prod is true and a colourised
// development logger otherwise. The returned func flushes buffered entries.
func New(prod bool) (*zap.Logger, func() error) {
	var log *zap.Logger
	if prod {
		log = zap.Must(zap.NewProduction())
	} else {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		log = zap.Must(cfg.Build())
	}
	return log.Named("tourism"), log.Sync
}
