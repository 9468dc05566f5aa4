package logger

import (
	"io"
	"log"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the shared, pre-configured logrus instance.
var Log *logrus.Logger

// InitLogger sets up the global logger: JSON formatter so log lines stay
// machine-parseable, output mirrored to stdout and a local file.
func InitLogger() {
	Log = logrus.New()

	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
	})

	file, err := os.OpenFile("closetube.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("cannot open log file: %v", err)
	}

	mw := io.MultiWriter(os.Stdout, file)
	Log.SetOutput(mw)

	Log.SetLevel(logrus.InfoLevel)
}
