package logger

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestInit(t *testing.T) {
	defer Init("text", "info")

	Init("json", "debug")
	assert.IsType(t, &logrus.JSONFormatter{}, Log.Logger.Formatter)
	assert.Equal(t, logrus.DebugLevel, Log.Logger.GetLevel())

	Init("text", "nonsense")
	assert.IsType(t, &logrus.TextFormatter{}, Log.Logger.Formatter)
	assert.Equal(t, logrus.InfoLevel, Log.Logger.GetLevel())
	assert.Equal(t, "profiles-api", Log.Data["service"])
}
