package logger

import (
	"time"
)

// StageTimer logs the start and completion of one pipeline stage.
type StageTimer struct {
	logger    Logger
	stage     string
	rowsIn    int
	startTime time.Time
	now       func() time.Time
}

// StartStage creates a StageTimer and logs that the stage began.
func StartStage(log Logger, stage string, rowsIn int) *StageTimer {
	if log == nil {
		log = GetGlobalLogger()
	}

	timer := &StageTimer{
		logger:    log.WithField("stage", stage),
		stage:     stage,
		rowsIn:    rowsIn,
		startTime: time.Now(),
		now:       time.Now,
	}

	timer.logger.WithField("rows", rowsIn).Debug("Stage started")
	return timer
}

// Complete logs the stage duration and the row count it produced.
func (s *StageTimer) Complete(rowsOut int) time.Duration {
	duration := s.now().Sub(s.startTime)

	s.logger.WithFields(Fields{
		"rows_in":  s.rowsIn,
		"rows_out": rowsOut,
		"duration": duration.String(),
	}).Debug("Stage completed")

	return duration
}

// CompleteWithError logs a failed stage.
func (s *StageTimer) CompleteWithError(err error) time.Duration {
	duration := s.now().Sub(s.startTime)

	s.logger.WithError(err).WithFields(Fields{
		"rows_in":  s.rowsIn,
		"duration": duration.String(),
	}).Error("Stage failed")

	return duration
}
