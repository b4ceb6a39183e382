package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// Init инициализирует структурированный логгер.
func Init(level string) {
	Log = logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	// Используем JSON формат для production, text для development
	Log.SetFormatter(&logrus.JSONFormatter{})
}

// SetTextFormatter устанавливает текстовый формат логов (для development).
func SetTextFormatter() {
	if Log != nil {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
}

// L возвращает глобальный логгер; до вызова Init пишет в никуда (удобно в тестах).
func L() *logrus.Logger {
	if Log == nil {
		silent := logrus.New()
		silent.SetOutput(io.Discard)
		return silent
	}
	return Log
}

// Component возвращает запись с полем component.
func Component(name string) *logrus.Entry {
	return L().WithField("component", name)
}
