package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	InfoLogger  *logrus.Logger
	ErrorLogger *logrus.Logger
)

func init() {
	// packages used from tests log without an explicit InitLogger call
	InitLogger("info", "text")
}

// InitLogger configures the two process loggers. Info goes to stdout and
// errors to stderr.
func InitLogger(level, format string) {
	InfoLogger = newLogger(os.Stdout, format)
	ErrorLogger = newLogger(os.Stderr, format)

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	InfoLogger.SetLevel(lvl)
	ErrorLogger.SetLevel(logrus.ErrorLevel)
	if lvl > logrus.ErrorLevel {
		ErrorLogger.SetLevel(lvl)
	}
}

func newLogger(out io.Writer, format string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	if strings.EqualFold(format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}
	return l
}
