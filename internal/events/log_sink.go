package events

import (
	"context"

	"go.uber.org/zap"
)

// LogSink logs assignment notifications. Stands in for email/WebSocket/push
// delivery.
type LogSink struct {
	log *zap.Logger
}

// NewLogSink returns a Sink that writes notifications to the given logger.
func NewLogSink(log *zap.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(_ context.Context, e AssignmentCreated) error {
	s.log.Info("task assigned, sending notification",
		zap.Int64("task_id", e.TaskID),
		zap.Int64("user_id", e.UserID),
	)
	return nil
}
