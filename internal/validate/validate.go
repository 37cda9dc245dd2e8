// Package validate checks request fields against a single table of rules
// before anything reaches the store.
package validate

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"taskboard/internal/apperr"
)

// Rule keys, one per constrained attribute.
const (
	ProjectName     = "project.name"
	ProjectColor    = "project.color"
	ProjectIcon     = "project.icon"
	ProjectPosition = "project.position"
	ProjectID       = "project.id"

	TaskProjectID   = "task.project_id"
	TaskTitle       = "task.title"
	TaskDescription = "task.description"
	TaskStatus      = "task.status"
	TaskPriority    = "task.priority"
	TaskTags        = "task.tags"
	TaskPosition    = "task.position"
	TaskMinutes     = "task.minutes"
)

// Rules is the constraint table. Strings are measured in characters after
// the request has been trimmed.
var Rules = map[string]string{
	ProjectName:     "required,max=120",
	ProjectColor:    "max=20",
	ProjectIcon:     "max=30",
	ProjectPosition: "gte=0",
	ProjectID:       "gt=0",

	TaskProjectID:   "gt=0",
	TaskTitle:       "required,max=200",
	TaskDescription: "max=4000",
	TaskStatus:      "required,max=50",
	TaskPriority:    "max=50",
	TaskTags:        "dive,max=30",
	TaskPosition:    "gte=0",
	TaskMinutes:     "gte=0",
}

var v = validator.New()

// Field is one supplied input value to check against Rules[Rule].
type Field struct {
	Rule  string
	Name  string
	Value any
}

// Checker is implemented by request types that know which of their fields
// were supplied.
type Checker interface {
	ValidationFields() []Field
}

// Request validates every supplied field of r and returns the first
// violation as an *apperr.ValidationError.
func Request(r Checker) error {
	return Fields(r.ValidationFields()...)
}

// Fields validates fields in order and stops at the first violation.
func Fields(fields ...Field) error {
	for _, f := range fields {
		rule, ok := Rules[f.Rule]
		if !ok {
			return fmt.Errorf("validate: unknown rule %q", f.Rule)
		}
		if err := v.Var(f.Value, rule); err != nil {
			return toValidationError(f.Name, err)
		}
	}
	return nil
}

func toValidationError(name string, err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("validate %s: %w", name, err)
	}
	fe := verrs[0]
	return &apperr.ValidationError{Field: name, Rule: fe.Tag(), Param: fe.Param()}
}
