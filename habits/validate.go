// Package habits, as part of the habit tracking module.
// This file, `validate.go`, registers the habit-specific validation rules and
// normalizes create and update requests before they reach the database.
package habits

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/user/habits-go/apperror"
	"github.com/user/habits-go/validation"
)

var validate = newValidator()

func newValidator() *validation.Validator {
	v := validation.New()
	v.Register("weekday", func(fl validator.FieldLevel) bool {
		d := Weekday(strings.ToLower(strings.TrimSpace(fl.Field().String())))
		for _, w := range AllWeekdays {
			if d == w {
				return true
			}
		}
		return false
	}, "%s may only contain sunday, monday, tuesday, wednesday, thursday, friday or saturday")
	v.Register("timeofday", func(fl validator.FieldLevel) bool {
		switch TimeOfDay(fl.Field().String()) {
		case Morning, Afternoon, Evening, Anytime:
			return true
		}
		return false
	}, "%s must be one of morning, afternoon, evening or anytime")
	return v
}

// normalizeCreate trims and canonicalizes a create request, then validates it.
func normalizeCreate(req *CreateHabitRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Description = strings.TrimSpace(req.Description)
	if req.TimeOfDay == "" {
		req.TimeOfDay = Anytime
	}
	if err := validate.Struct(req); err != nil {
		return err
	}
	req.Frequency = canonicalFrequency(req.Frequency)
	return nil
}

// normalizeUpdate does the same for a partial update. A present but blank
// name and a present but empty frequency are rejected here since omitempty
// would let them through.
func normalizeUpdate(req *UpdateHabitRequest) error {
	if req.isEmpty() {
		return apperror.NewBadRequestError("no fields provided for update", nil)
	}
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return apperror.NewValidationError("name is required", nil)
		}
		req.Name = &trimmed
	}
	if req.Frequency != nil && len(req.Frequency) == 0 {
		return apperror.NewValidationError("frequency must contain at least 1 item(s)", nil)
	}
	if req.Description != nil {
		trimmed := strings.TrimSpace(*req.Description)
		req.Description = &trimmed
	}
	if err := validate.Struct(req); err != nil {
		return err
	}
	if req.Frequency != nil {
		req.Frequency = canonicalFrequency(req.Frequency)
	}
	return nil
}
