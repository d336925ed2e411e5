package notify

import (
	"github.com/sirupsen/logrus"
)

// Notifier is the user-facing notification surface. In the web frontend
// this system replaces, these were transient toast messages; here they are
// delivered by whatever the embedding program wires in.
type Notifier interface {
	Success(message string)
	Error(message string)
	Info(message string)
}

// LogNotifier delivers notifications through the structured log.
type LogNotifier struct {
	logger *logrus.Logger
}

func NewLogNotifier(logger *logrus.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Success(message string) {
	n.logger.WithField("kind", "success").Info(message)
}

func (n *LogNotifier) Error(message string) {
	n.logger.WithField("kind", "error").Warn(message)
}

func (n *LogNotifier) Info(message string) {
	n.logger.WithField("kind", "info").Info(message)
}

// NopNotifier discards everything.
type NopNotifier struct{}

func (NopNotifier) Success(string) {}
func (NopNotifier) Error(string)   {}
func (NopNotifier) Info(string)    {}
