package dto

import "github.com/andreyxaxa/File-Moderator/internal/entity"

// Outcome describes how far one object got through the moderation pipeline.
type Outcome struct {
	Key      string
	Object   entity.ObjectReference
	Category entity.Category
	Record   *entity.ModerationRecord
	Verdict  entity.Verdict

	Stage    entity.Stage
	FailedAt entity.Stage // stage being entered when the pipeline failed

	DestinationKey string
	ReportKey      string
}

func NewOutcome(bucket, key string) *Outcome {
	return &Outcome{
		Key:    key,
		Object: entity.ObjectReference{Bucket: bucket, Key: key},
		Stage:  entity.StagePending,
	}
}

func (o *Outcome) Advance(stage entity.Stage) {
	o.Stage = stage
}

func (o *Outcome) Fail(attempted entity.Stage) {
	o.FailedAt = attempted
	o.Stage = entity.StageFailed
}

func (o *Outcome) Done() bool {
	return o.Stage == entity.StageDone
}
