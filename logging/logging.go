// Package logging configures the process-wide logrus instance every
// other package logs through via logrus.WithField.
package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Init sets the global log level and a compact text formatter. Unknown
// levels fall back to info rather than failing startup.
func Init(level string) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}
