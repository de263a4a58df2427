package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide structured logger.
var Log *logrus.Entry

// init gives tests and tools a usable logger without calling Init.
func init() {
	Init("text", "info")
}

// Init configures the global logger. format is "text" or "json"; level is any logrus level name.
func Init(format, level string) {
	l := logrus.New()
	l.SetOutput(os.Stderr)

	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	Log = l.WithField("service", "profiles-api")
}
