package storage

import (
	"strings"

	"go.uber.org/zap"
)

// badgerLogger routes badger's internal logging through zap
type badgerLogger struct {
	s *zap.SugaredLogger
}

func newBadgerLogger(l *zap.Logger) *badgerLogger {
	return &badgerLogger{s: l.Named("badger").Sugar()}
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.s.Errorf(strings.TrimSuffix(f, "\n"), v...)
}

func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.s.Warnf(strings.TrimSuffix(f, "\n"), v...)
}

func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.s.Infof(strings.TrimSuffix(f, "\n"), v...)
}

func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.s.Debugf(strings.TrimSuffix(f, "\n"), v...)
}
