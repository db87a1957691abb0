package events

// Engine lifecycle event names. The train/eval loops fire the
// fine-grained iteration events; the engine fires the rest.
const (
	Started                 = "started"
	EpochStarted            = "epoch_started"
	TrainEpochStarted       = "train_epoch_started"
	TrainIterationStarted   = "train_iteration_started"
	TrainForwardCompleted   = "train_forward_completed"
	TrainBackwardCompleted  = "train_backward_completed"
	TrainIterationCompleted = "train_iteration_completed"
	TrainEpochCompleted     = "train_epoch_completed"
	EvalEpochStarted        = "eval_epoch_started"
	EvalIterationStarted    = "eval_iteration_started"
	EvalIterationCompleted  = "eval_iteration_completed"
	EvalEpochCompleted      = "eval_epoch_completed"
	EpochCompleted          = "epoch_completed"
	Completed               = "completed"
)
