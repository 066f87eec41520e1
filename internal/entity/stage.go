package entity

// Stage is a state of the per-object moderation state machine.
type Stage string

const (
	StagePending    Stage = "pending"
	StageClassified Stage = "classified"
	StageDetected   Stage = "detected"
	StageVerdicted  Stage = "verdicted"
	StageRouted     Stage = "routed"
	StageReported   Stage = "reported"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}
