package logger

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger *zap.Logger
	once   sync.Once
)

// GetLogger returns the process-wide zap.Logger.  The first call decides the
// encoder: production JSON when prod is true, the development console
// encoder otherwise.  Later calls ignore the argument.
func GetLogger(prod bool) *zap.Logger {
	once.Do(func() {
		var err error
		if prod {
			logger, err = zap.NewProduction()
		} else {
			logger, err = zap.NewDevelopment()
		}
		if err != nil {
			panic("failed logger setup : " + err.Error())
		}
	})
	return logger
}
