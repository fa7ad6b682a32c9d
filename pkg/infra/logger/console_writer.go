package logger

import (
	"io"

	"github.com/sirupsen/logrus"
)

// ConsoleHook mirrors every entry to out. The CLI points it at stderr so
// stdout only carries results.
type ConsoleHook struct {
	out    io.Writer
	levels []logrus.Level
}

func NewConsoleHook(out io.Writer, minLevel logrus.Level) *ConsoleHook {
	levels := make([]logrus.Level, 0, len(logrus.AllLevels))
	for _, l := range logrus.AllLevels {
		if l <= minLevel {
			levels = append(levels, l)
		}
	}
	return &ConsoleHook{out: out, levels: levels}
}

func (h *ConsoleHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.out.Write(line)
	return err
}

func (h *ConsoleHook) Levels() []logrus.Level {
	return h.levels
}
