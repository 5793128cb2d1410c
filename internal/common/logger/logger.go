package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339Nano,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "timestamp",
			logrus.FieldKeyMsg:  "message",
		},
	})
	return l
}

// SetLevel accepts any logrus level name ("debug", "info", "warn", ...).
func SetLevel(level string) error {
	lv, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	base.SetLevel(lv)
	return nil
}

func SetOutput(w io.Writer) { base.SetOutput(w) }

type Logger struct{ entry *logrus.Entry }

func New(service string) *Logger {
	return &Logger{entry: base.WithFields(logrus.Fields{
		"service":  service,
		"hostname": hostname(),
	})}
}

// With returns a logger that adds fields to every entry.
func (l *Logger) With(fields map[string]any) *Logger {
	return &Logger{entry: l.entry.WithFields(fields)}
}

func (l *Logger) log(level logrus.Level, action string, fields map[string]any, err error) {
	e := l.entry.WithField("action", action)
	if len(fields) > 0 {
		e = e.WithFields(fields)
	}
	if err != nil {
		e = e.WithError(err)
	}
	e.Log(level, action)
}

func (l *Logger) Info(action string, fields map[string]any) {
	l.log(logrus.InfoLevel, action, fields, nil)
}
func (l *Logger) Debug(action string, fields map[string]any) {
	l.log(logrus.DebugLevel, action, fields, nil)
}
func (l *Logger) Warn(action string, err error, fields map[string]any) {
	l.log(logrus.WarnLevel, action, fields, err)
}
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log(logrus.ErrorLevel, action, fields, err)
}

func hostname() string { h, _ := os.Hostname(); return h }
