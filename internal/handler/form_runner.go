package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escolar-dev/escolar-api/internal/forms"
	"github.com/escolar-dev/escolar-api/internal/service"
	"github.com/escolar-dev/escolar-api/pkg/response"
)

// FormRunner drives every entity mutation through a form controller: local
// validation first, then the authoritative mutation with a bounded timeout,
// then fire-once feedback.
type FormRunner struct {
	validate *validator.Validate
	timeout  time.Duration
	notifier forms.Notifier
	metrics  *service.MetricsService
	logger   *zap.Logger
}

// NewFormRunner builds the shared form runner.
func NewFormRunner(validate *validator.Validate, timeout time.Duration, notifier forms.Notifier, metrics *service.MetricsService, logger *zap.Logger) *FormRunner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormRunner{
		validate: validate,
		timeout:  timeout,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// Submit runs one submission through a fresh controller and writes the error
// response on failure. It returns the mutation value and whether the
// submission succeeded.
func (r *FormRunner) Submit(c *gin.Context, label string, draft interface{}, mutate forms.MutationFunc) (interface{}, bool) {
	ctrl := forms.NewController(forms.Config{
		Validator: r.validate,
		Timeout:   r.timeout,
		Notifier:  r.notifier,
		Logger:    r.logger,
	})
	ctrl.OnResult(func(res forms.Result) {
		if r.metrics != nil {
			r.metrics.RecordSubmission(label, res.Success)
		}
	})

	result, err := ctrl.Submit(c.Request.Context(), draft, label, mutate)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if result.Failed() {
		response.Error(c, result.Err)
		return nil, false
	}
	return result.Value, true
}
