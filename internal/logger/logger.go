package logger

import (
	"github.com/sirupsen/logrus"
)

// Log доступен сразу после старта процесса; Init перенастраивает его.
var Log = logrus.New()

// Init настраивает уровень и формат логов: JSON для production, текст для остальных окружений.
func Init(level, env string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log.SetLevel(lvl)

	if env == "production" {
		Log.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	Log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
