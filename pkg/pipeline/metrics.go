package pipeline

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StageMetrics tracks timing and row counts for a single pipeline stage
type StageMetrics struct {
	StageName   string
	StartTime   time.Time
	EndTime     time.Time
	RowsIn      int
	RowsOut     int
	FailureNote string
}

// Duration returns the total duration of the stage
func (sm *StageMetrics) Duration() time.Duration {
	if sm.EndTime.IsZero() {
		return time.Since(sm.StartTime)
	}
	return sm.EndTime.Sub(sm.StartTime)
}

// RunMetrics tracks metrics for a full pipeline run
type RunMetrics struct {
	mu         sync.Mutex
	logger     *zap.Logger
	StartTime  time.Time
	EndTime    time.Time
	Stages     map[string]*StageMetrics
	stageOrder []string
}

// NewRunMetrics creates a new RunMetrics instance
func NewRunMetrics(logger *zap.Logger) *RunMetrics {
	return &RunMetrics{
		StartTime: time.Now(),
		Stages:    make(map[string]*StageMetrics),
		logger:    logger,
	}
}

// StartStage begins tracking metrics for a stage
func (rm *RunMetrics) StartStage(stage string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	sm := &StageMetrics{
		StageName: stage,
		StartTime: time.Now(),
	}
	rm.Stages[stage] = sm
	rm.stageOrder = append(rm.stageOrder, stage)

	rm.logger.Info("Started pipeline stage", zap.String("stage", stage))
}

// EndStage completes tracking metrics for a stage
func (rm *RunMetrics) EndStage(stage string, rowsIn, rowsOut int) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if sm, ok := rm.Stages[stage]; ok {
		sm.EndTime = time.Now()
		sm.RowsIn = rowsIn
		sm.RowsOut = rowsOut

		rm.logger.Info("Completed pipeline stage",
			zap.String("stage", stage),
			zap.Duration("duration", sm.Duration()),
			zap.Int("rowsIn", rowsIn),
			zap.Int("rowsOut", rowsOut))
	}
}

// FailStage records a stage failure note without losing the timing
func (rm *RunMetrics) FailStage(stage string, err error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if sm, ok := rm.Stages[stage]; ok {
		sm.EndTime = time.Now()
		sm.FailureNote = err.Error()
	}
}

// Complete marks the pipeline run as complete
func (rm *RunMetrics) Complete() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	rm.EndTime = time.Now()

	rm.logger.Info("Pipeline run completed",
		zap.Duration("totalDuration", rm.EndTime.Sub(rm.StartTime)),
		zap.Int("stages", len(rm.Stages)))
}

// Duration returns the total duration of the pipeline run
func (rm *RunMetrics) Duration() time.Duration {
	if rm.EndTime.IsZero() {
		return time.Since(rm.StartTime)
	}
	return rm.EndTime.Sub(rm.StartTime)
}

// Summary renders a human-readable stage breakdown for the final log line
func (rm *RunMetrics) Summary() string {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	summary := ""
	for _, stage := range rm.stageOrder {
		sm := rm.Stages[stage]
		if sm.FailureNote != "" {
			summary += fmt.Sprintf("%s: failed after %s (%s); ",
				sm.StageName, formatDuration(sm.Duration()), sm.FailureNote)
			continue
		}
		summary += fmt.Sprintf("%s: %s (%d -> %d rows); ",
			sm.StageName, formatDuration(sm.Duration()), sm.RowsIn, sm.RowsOut)
	}
	return summary
}

// formatDuration formats a duration to a human-readable string
func formatDuration(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
