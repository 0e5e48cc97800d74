package forms

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/validation"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

// ErrSubmissionInFlight is returned when Submit is called while a submission
// is already running. The re-entrant call is ignored, never run concurrently.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// ErrClosed is returned when Submit is called after the controller succeeded
// and was torn down.
var ErrClosed = errors.New("form controller is closed")

// Config groups controller dependencies.
type Config struct {
	Validator *validator.Validate
	Timeout   time.Duration
	Notifier  Notifier
	Logger    *zap.Logger
}

// Controller drives one form instance through
// Editing → Submitting → Succeeded/Failed. One submission in flight at most;
// the draft is frozen while submitting.
type Controller struct {
	validate *validator.Validate
	timeout  time.Duration
	notifier Notifier
	logger   *zap.Logger
	observer func(Result)

	mu        sync.Mutex
	state     State
	seq       uint64
	delivered uint64
	last      *Result
}

// NewController builds a controller in the Editing state.
func NewController(cfg Config) *Controller {
	v := cfg.Validator
	if v == nil {
		v = validation.New()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NewLogNotifier(logger)
	}
	return &Controller{
		validate: v,
		timeout:  timeout,
		notifier: notifier,
		logger:   logger,
		state:    StateEditing,
	}
}

// OnResult registers the feedback observer. It fires exactly once per
// completed submission; re-delivery of an already observed result never
// happens. Must be called before Submit.
func (c *Controller) OnResult(fn func(Result)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = fn
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Done reports whether the controller succeeded and was torn down.
func (c *Controller) Done() bool {
	return c.State() == StateSucceeded
}

// Latest returns the most recent result, if any submission completed.
func (c *Controller) Latest() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Result{}, false
	}
	return *c.last, true
}

// Submit validates the draft locally and, when clean, runs the mutation with
// a bounded timeout. Local validation failures return an error immediately
// and never reach the mutation. A completed submission returns its Result.
func (c *Controller) Submit(ctx context.Context, draft interface{}, label string, mutate MutationFunc) (Result, error) {
	c.mu.Lock()
	switch c.state {
	case StateSucceeded:
		c.mu.Unlock()
		return Result{}, ErrClosed
	case StateSubmitting:
		c.mu.Unlock()
		return Result{}, ErrSubmissionInFlight
	}

	if fields := validation.Check(c.validate, draft); len(fields) > 0 {
		c.mu.Unlock()
		return Result{}, appErrors.Validation("invalid "+label+" payload", fields)
	}

	c.state = StateSubmitting
	c.mu.Unlock()

	subCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	value, err := mutate(subCtx)
	if err != nil && errors.Is(subCtx.Err(), context.DeadlineExceeded) {
		err = appErrors.Wrap(err, appErrors.ErrTimeout.Code, appErrors.ErrTimeout.Status, label+" timed out")
	}

	c.mu.Lock()
	c.seq++
	result := Result{Seq: c.seq, Success: err == nil, Value: value, Err: err}
	c.last = &result
	if err == nil {
		c.state = StateSucceeded
	} else {
		c.state = StateFailed
	}
	c.mu.Unlock()

	c.deliver(result, label)
	return result, nil
}

// deliver fires feedback exactly once per result sequence.
func (c *Controller) deliver(result Result, label string) {
	c.mu.Lock()
	if result.Seq <= c.delivered {
		c.mu.Unlock()
		return
	}
	c.delivered = result.Seq
	observer := c.observer
	c.mu.Unlock()

	if result.Success {
		c.notifier.Notify(label+" saved", KindSuccess)
	} else {
		c.notifier.Notify(label+" failed", KindError)
		c.logger.Warn("form submission failed",
			zap.String("form", label),
			zap.Error(result.Err),
		)
	}
	if observer != nil {
		observer(result)
	}
}
