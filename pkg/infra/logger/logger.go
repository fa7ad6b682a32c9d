package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const logDir = "logs"

type Options struct {
	Level   string
	Console io.Writer
	// NoFile keeps everything on the console, used by tests and one-shot CLI runs.
	NoFile bool
}

// NewLogger builds the process logger. mode names the log file under logs/.
// The returned closer flushes the file writer.
func NewLogger(mode string, opts Options) (*logrus.Logger, func()) {
	logger := logrus.New()

	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	level := opts.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	if opts.NoFile {
		logger.SetOutput(console)
		return logger, func() {}
	}

	logFile := filepath.Clean(filepath.Join(logDir, mode+".log"))
	if !strings.HasPrefix(logFile, logDir+string(filepath.Separator)) {
		log.Fatalf("Invalid log file path: must be in logs directory")
	}
	if err := os.MkdirAll(logDir, 0750); err != nil {
		log.Fatalf("Failed to create logs directory: %v", err)
	}

	asyncWriter, err := NewAsyncFileWriter(logFile, 32*1024)
	if err != nil {
		log.Fatalf("Failed to initialize async log writer: %v", err)
	}

	logger.SetOutput(asyncWriter)
	logger.AddHook(NewConsoleHook(console, parsed))

	return logger, func() {
		asyncWriter.Close()
		if n := asyncWriter.Dropped(); n > 0 {
			fmt.Fprintf(console, "imageguard: %d log lines dropped, log queue was full\n", n)
		}
	}
}
