package whatsapp

import (
	"github.com/sirupsen/logrus"
	waLog "go.mau.fi/whatsmeow/util/log"
)

// logrusLogger routes whatsmeow's internal logging through logrus.
type logrusLogger struct {
	entry *logrus.Entry
}

func newLogger(log *logrus.Logger, module string) waLog.Logger {
	return &logrusLogger{entry: log.WithField("module", "whatsmeow/"+module)}
}

func (l *logrusLogger) Warnf(msg string, args ...interface{})  { l.entry.Warnf(msg, args...) }
func (l *logrusLogger) Errorf(msg string, args ...interface{}) { l.entry.Errorf(msg, args...) }
func (l *logrusLogger) Infof(msg string, args ...interface{})  { l.entry.Infof(msg, args...) }
func (l *logrusLogger) Debugf(msg string, args ...interface{}) { l.entry.Debugf(msg, args...) }

func (l *logrusLogger) Sub(module string) waLog.Logger {
	return &logrusLogger{entry: l.entry.WithField("module", l.entry.Data["module"].(string)+"/"+module)}
}
