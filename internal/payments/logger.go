package payments

import (
	"fmt"
	"log/slog"
)

// slogAdapter routes the provider SDK's leveled logging into slog
type slogAdapter struct {
	log *slog.Logger
}

func (a slogAdapter) Debugf(format string, v ...interface{}) {
	a.log.Debug(fmt.Sprintf(format, v...))
}

func (a slogAdapter) Infof(format string, v ...interface{}) {
	a.log.Debug(fmt.Sprintf(format, v...))
}

func (a slogAdapter) Warnf(format string, v ...interface{}) {
	a.log.Warn(fmt.Sprintf(format, v...))
}

func (a slogAdapter) Errorf(format string, v ...interface{}) {
	a.log.Error(fmt.Sprintf(format, v...))
}
