package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/dmitrijs2005/activitydash/internal/common"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const maxNameLength = 150

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)

var (
	usernameRules = []validation.Rule{
		validation.Required,
		validation.RuneLength(1, maxNameLength),
		validation.Match(usernamePattern).Error("may contain only letters, digits and @/./+/-/_"),
	}
	emailRules = []validation.Rule{
		validation.Required,
		is.Email,
	}
	passwordRules = []validation.Rule{
		validation.Required,
		validation.RuneLength(common.MinPasswordLength, 0),
	}
	personNameRules = []validation.Rule{
		validation.RuneLength(0, maxNameLength),
	}
)

// ValidationError reports field-level input problems. It matches
// common.ErrorValidation and the sentinel of every failed field via
// errors.Is.
type ValidationError struct {
	Fields map[string]string
	causes []error
}

func (e *ValidationError) add(field string, cause error, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = msg
	e.causes = append(e.causes, cause)
}

// check runs rules against value and records the first failure as cause.
func (e *ValidationError) check(field string, value string, cause error, rules ...validation.Rule) {
	if err := validation.Validate(value, rules...); err != nil {
		e.add(field, cause, err.Error())
	}
}

func (e *ValidationError) has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return common.ErrorValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() []error {
	return append([]error{common.ErrorValidation}, e.causes...)
}

func fieldError(field string, cause error, msg string) *ValidationError {
	e := &ValidationError{}
	e.add(field, cause, msg)
	return e
}
