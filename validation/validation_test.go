package validation

import (
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/user/habits-go/apperror"
)

type sample struct {
	Name  string   `json:"name" validate:"required,max=5"`
	Email string   `json:"email" validate:"omitempty,email"`
	Tags  []string `json:"tags" validate:"omitempty,min=1,dive,even"`
}

func TestStructMessages(t *testing.T) {
	v := New()
	v.Register("even", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String())%2 == 0
	}, "%s entries must have an even length")

	tests := []struct {
		name string
		in   sample
		want string
	}{
		{"ok", sample{Name: "ana"}, ""},
		{"required", sample{}, "name is required"},
		{"max", sample{Name: "toolong"}, "name must be at most 5 characters"},
		{"email", sample{Name: "ana", Email: "nope"}, "email must be a valid email address"},
		{"custom rule", sample{Name: "ana", Tags: []string{"ab", "abc"}}, "tags entries must have an even length"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(&tt.in)
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !apperror.IsValidationError(err) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			appErr, _ := apperror.FromError(err)
			if !strings.EqualFold(appErr.Message, tt.want) {
				t.Errorf("message = %q, want %q", appErr.Message, tt.want)
			}
		})
	}
}
