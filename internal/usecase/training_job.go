package usecase

import (
	"context"
	"fmt"

	xlogger "PopPredict/pkg/logger"
	"PopPredict/pkg/queue"
)

// TrainingBuildType is the queue message type that triggers a dataset build.
const TrainingBuildType = "training:build"

// TrainingBuildJob consumes retraining triggers from the job queue and runs
// the dataset builder. Enqueued by an operator or an external schedule.
type TrainingBuildJob struct {
	builder *TrainingDataBuilder
	logger  *xlogger.Logger
}

func NewTrainingBuildJob(builder *TrainingDataBuilder, logger *xlogger.Logger) *TrainingBuildJob {
	return &TrainingBuildJob{builder: builder, logger: logger}
}

func (j *TrainingBuildJob) Name() string { return "training-dataset-build" }

func (j *TrainingBuildJob) Type() string { return TrainingBuildType }

func (j *TrainingBuildJob) Handle(ctx context.Context, _ interface{}) error {
	report, err := j.builder.Build(ctx)
	if err != nil {
		return fmt.Errorf("training build: %w", err)
	}
	j.logger.Info("queued training build finished",
		xlogger.Int("rows", report.TotalRows),
		xlogger.Int("dropped", report.DroppedRows))
	return nil
}

var _ queue.Job = (*TrainingBuildJob)(nil)
