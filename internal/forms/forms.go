// Package forms implements the entity form mutation pipeline: a per-form
// controller that validates a draft locally, hands it to a mutation exactly
// once at a time, and surfaces the outcome through a fire-once feedback hook.
package forms

import (
	"context"

	"go.uber.org/zap"
)

// State is the controller lifecycle state.
type State int

const (
	StateEditing State = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

// String renders the state for logs.
func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Kind classifies a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Result is the outcome of one completed submission. Seq increases
// monotonically per controller so observers can de-duplicate delivery.
type Result struct {
	Seq     uint64
	Success bool
	Value   interface{}
	Err     error
}

// Failed reports whether the submission failed.
func (r Result) Failed() bool {
	return !r.Success
}

// MutationFunc performs the authoritative server-side mutation for a frozen
// draft. It must re-validate; the controller's local pass is advisory only.
type MutationFunc func(ctx context.Context) (interface{}, error)

// Notifier receives user-facing feedback. Fire-and-forget.
type Notifier interface {
	Notify(message string, kind Kind)
}

// LogNotifier emits notifications through the structured log.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier builds a zap-backed notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the notification with its kind.
func (n *LogNotifier) Notify(message string, kind Kind) {
	switch kind {
	case KindError:
		n.logger.Warn("notification", zap.String("kind", string(kind)), zap.String("message", message))
	default:
		n.logger.Info("notification", zap.String("kind", string(kind)), zap.String("message", message))
	}
}
