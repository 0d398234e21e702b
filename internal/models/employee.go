package models

import "time"

// DateLayout is the ISO calendar date form used for birthdates.
const DateLayout = "2006-01-02"

// DatePart returns the YYYY-MM-DD prefix of a date or timestamp. A value
// without a valid date prefix is returned unchanged so validation can
// report it.
func DatePart(v string) string {
	if len(v) <= len(DateLayout) {
		return v
	}
	prefix := v[:len(DateLayout)]
	if _, err := time.Parse(DateLayout, prefix); err != nil {
		return v
	}
	return prefix
}

// Employee is a directory record. An empty ID marks a draft that has not
// been created in the record store yet.
type Employee struct {
	ID         string `json:"id,omitempty"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Department string `json:"department"`
	Birthdate  string `json:"birthdate"` // "YYYY-MM-DD"
}

// Persisted reports whether the record was assigned an id by the store.
func (e Employee) Persisted() bool {
	return e.ID != ""
}

// FullName is the display name used in confirmation prompts.
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// Filter holds the search inputs of the directory.
type Filter struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return f.Name == "" && f.Department == ""
}

// Stats are the summary counters shown above the list.
type Stats struct {
	TotalEmployees   int      `json:"total_employees"`
	TotalDepartments int      `json:"total_departments"`
	Departments      []string `json:"departments"`
	SearchResults    int      `json:"search_results"`
}
