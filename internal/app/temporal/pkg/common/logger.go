package common

import (
	"go.temporal.io/sdk/log"
	"go.uber.org/zap"
)

var _ log.Logger = (*ZapAdapter)(nil)

// ZapAdapter lets the Temporal SDK log through zap
type ZapAdapter struct {
	logger *zap.SugaredLogger
}

// NewZapAdapter wraps logger. A nil logger discards everything.
func NewZapAdapter(logger *zap.Logger) *ZapAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapAdapter{logger: logger.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (z *ZapAdapter) Debug(msg string, keyvals ...interface{}) { z.logger.Debugw(msg, keyvals...) }
func (z *ZapAdapter) Info(msg string, keyvals ...interface{})  { z.logger.Infow(msg, keyvals...) }
func (z *ZapAdapter) Warn(msg string, keyvals ...interface{})  { z.logger.Warnw(msg, keyvals...) }
func (z *ZapAdapter) Error(msg string, keyvals ...interface{}) { z.logger.Errorw(msg, keyvals...) }

// With returns a child adapter carrying keyvals
func (z *ZapAdapter) With(keyvals ...interface{}) log.Logger {
	return &ZapAdapter{logger: z.logger.With(keyvals...)}
}
