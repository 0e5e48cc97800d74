package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escolar-dev/escolar-api/internal/models"
	appErrors "github.com/escolar-dev/escolar-api/pkg/errors"
)

type enrollmentPayload struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Email    string `json:"email" validate:"omitempty,email"`
	Grade    int    `json:"grade" validate:"gte=1,lte=12"`
	Sex      string `json:"sex" validate:"required,oneof=MALE FEMALE"`
	ClassID  string `json:"class_id" validate:"required,uuid"`
}

func TestCheckValidPayload(t *testing.T) {
	v := New()
	fields := Check(v, enrollmentPayload{
		Username: "amira",
		Grade:    7,
		Sex:      "FEMALE",
		ClassID:  "7c9a1d5e-30f2-4f05-9c39-2a3b1d4e5f60",
	})
	assert.Empty(t, fields)
}

func TestCheckReportsJSONFieldNames(t *testing.T) {
	v := New()
	fields := Check(v, enrollmentPayload{Grade: 7})

	assert.Equal(t, "is required", fields["username"])
	assert.Equal(t, "is required", fields["sex"])
	assert.Equal(t, "is required", fields["class_id"])
	assert.NotContains(t, fields, "Username")
}

func TestCheckMessages(t *testing.T) {
	v := New()
	fields := Check(v, enrollmentPayload{
		Username: "ab",
		Email:    "not-an-email",
		Grade:    13,
		Sex:      "OTHER",
		ClassID:  "not-a-uuid",
	})

	assert.Equal(t, "must be at least 3 characters", fields["username"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at most 12", fields["grade"])
	assert.Equal(t, "must be one of MALE, FEMALE", fields["sex"])
	assert.Equal(t, "must be a valid identifier", fields["class_id"])
}

func TestCheckRequiredDateFields(t *testing.T) {
	type schedulePayload struct {
		StartDate models.Date `json:"start_date" validate:"required"`
		DueDate   models.Date `json:"due_date" validate:"required"`
	}

	v := New()

	fields := Check(v, schedulePayload{})
	assert.Equal(t, "is required", fields["start_date"])
	assert.Equal(t, "is required", fields["due_date"])

	fields = Check(v, schedulePayload{
		StartDate: models.NewDate(2026, 9, 1),
		DueDate:   models.NewDate(2026, 9, 8),
	})
	assert.Empty(t, fields)
}

func TestCheckIsDeterministic(t *testing.T) {
	v := New()
	payload := enrollmentPayload{Username: "ab", Grade: 0, Sex: "OTHER"}

	first := Check(v, payload)
	second := Check(v, payload)
	assert.Equal(t, first, second)
}

func TestCheckErrBuildsValidationError(t *testing.T) {
	v := New()

	require.NoError(t, CheckErr(v, enrollmentPayload{
		Username: "amira",
		Grade:    7,
		Sex:      "MALE",
		ClassID:  "7c9a1d5e-30f2-4f05-9c39-2a3b1d4e5f60",
	}, "student"))

	err := CheckErr(v, enrollmentPayload{Grade: 7}, "student")
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "invalid student payload", appErr.Message)
	assert.Equal(t, "is required", appErr.Fields["username"])
}
