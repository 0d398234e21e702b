// Package validation checks employee drafts before they are sent to the
// record store.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"employee-directory/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// Field names used as keys of a Result.
const (
	FieldFirstName  = "firstName"
	FieldLastName   = "lastName"
	FieldDepartment = "department"
	FieldBirthdate  = "birthdate"
)

// MinimumAge is the youngest age accepted for an employee.
const MinimumAge = 18

// Code classifies a field failure.
type Code string

const (
	CodeRequired      Code = "Required"
	CodeInvalidDate   Code = "InvalidDate"
	CodeFutureDate    Code = "FutureDate"
	CodeUnderage      Code = "Underage"
	CodeDuplicateName Code = "DuplicateName"
)

// FieldError is a single human-readable failure on a form field.
type FieldError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Result maps field names to failures. An empty Result means the draft is
// acceptable.
type Result map[string]FieldError

// Valid reports whether no rule failed.
func (r Result) Valid() bool {
	return len(r) == 0
}

// Messages flattens the result to field -> message.
func (r Result) Messages() map[string]string {
	out := make(map[string]string, len(r))
	for field, fe := range r {
		out[field] = fe.Message
	}
	return out
}

// Error lets a Result travel as an error once it is known to be non-empty.
func (r Result) Error() string {
	parts := make([]string, 0, len(r))
	for _, field := range []string{FieldFirstName, FieldLastName, FieldDepartment, FieldBirthdate} {
		if fe, ok := r[field]; ok {
			parts = append(parts, field+": "+fe.Message)
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

var requiredMessages = map[string]string{
	FieldFirstName:  "First name is required",
	FieldLastName:   "Last name is required",
	FieldDepartment: "Department is required",
	FieldBirthdate:  "Birthdate is required",
}

const (
	msgInvalidDate   = "Birthdate must be a date in YYYY-MM-DD form"
	msgFutureDate    = "Birthdate cannot be in the future"
	msgUnderage      = "Employee must be at least 18 years old"
	msgDuplicateName = "An employee with this first and last name already exists"
)

type draftFields struct {
	FirstName  string `json:"firstName" validate:"notblank"`
	LastName   string `json:"lastName" validate:"notblank"`
	Department string `json:"department" validate:"notblank"`
	Birthdate  string `json:"birthdate" validate:"notblank,datetime=2006-01-02"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate runs every rule against draft. editingID excludes the record
// being edited from the duplicate check; pass "" for a new draft. now fixes
// the reference day for the age rules.
func Validate(draft models.Employee, collection []models.Employee, editingID string, now time.Time) Result {
	res := Result{}

	err := validate.Struct(draftFields{
		FirstName:  draft.FirstName,
		LastName:   draft.LastName,
		Department: draft.Department,
		Birthdate:  draft.Birthdate,
	})
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Tag() {
			case "notblank":
				res[fe.Field()] = FieldError{Code: CodeRequired, Message: requiredMessages[fe.Field()]}
			case "datetime":
				res[fe.Field()] = FieldError{Code: CodeInvalidDate, Message: msgInvalidDate}
			}
		}
	}

	if _, failed := res[FieldBirthdate]; !failed {
		if fe, ok := checkBirthdate(draft.Birthdate, now); !ok {
			res[FieldBirthdate] = fe
		}
	}

	if IsDuplicate(draft, collection, editingID) {
		dup := FieldError{Code: CodeDuplicateName, Message: msgDuplicateName}
		res[FieldFirstName] = dup
		res[FieldLastName] = dup
	}
	return res
}

func checkBirthdate(value string, now time.Time) (FieldError, bool) {
	birth, err := time.Parse(models.DateLayout, value)
	if err != nil {
		return FieldError{Code: CodeInvalidDate, Message: msgInvalidDate}, false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if birth.After(today) {
		return FieldError{Code: CodeFutureDate, Message: msgFutureDate}, false
	}
	if Age(birth, now) < MinimumAge {
		return FieldError{Code: CodeUnderage, Message: msgUnderage}, false
	}
	return FieldError{}, true
}

// Age returns the age in whole years on the calendar day of now.
func Age(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// IsDuplicate reports whether another record already carries the draft's
// first and last name, compared trimmed and case-folded.
func IsDuplicate(draft models.Employee, collection []models.Employee, editingID string) bool {
	first := strings.TrimSpace(draft.FirstName)
	last := strings.TrimSpace(draft.LastName)
	if first == "" || last == "" {
		return false
	}
	for _, e := range collection {
		if editingID != "" && e.ID == editingID {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(e.FirstName), first) &&
			strings.EqualFold(strings.TrimSpace(e.LastName), last) {
			return true
		}
	}
	return false
}
