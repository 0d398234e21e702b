// Package view computes the filtered list and summary counters of the
// directory. Everything here is a pure function of the collection and the
// filter inputs.
package view

import (
	"strings"

	"employee-directory/internal/models"
)

// View is the derived, read-only projection of a collection.
type View struct {
	Filtered []models.Employee `json:"filtered"`
	Stats    models.Stats      `json:"stats"`
}

// Derive filters the collection and recomputes the counters.
func Derive(collection []models.Employee, filter models.Filter) View {
	filtered := Filter(collection, filter)
	departments := Departments(collection)
	return View{
		Filtered: filtered,
		Stats: models.Stats{
			TotalEmployees:   len(collection),
			TotalDepartments: len(departments),
			Departments:      departments,
			SearchResults:    len(filtered),
		},
	}
}

// Filter keeps the records whose first or last name contains the name
// query and whose department equals the department query, both ignoring
// case. Store order is preserved.
func Filter(collection []models.Employee, filter models.Filter) []models.Employee {
	name := strings.ToLower(filter.Name)
	department := strings.ToLower(filter.Department)

	out := make([]models.Employee, 0, len(collection))
	for _, e := range collection {
		if !matchesName(e, name) {
			continue
		}
		if department != "" && strings.ToLower(e.Department) != department {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchesName(e models.Employee, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.FirstName), query) ||
		strings.Contains(strings.ToLower(e.LastName), query)
}

// Departments returns the distinct department labels in first-seen order.
func Departments(collection []models.Employee) []string {
	seen := make(map[string]struct{}, len(collection))
	out := make([]string, 0)
	for _, e := range collection {
		if _, ok := seen[e.Department]; ok {
			continue
		}
		seen[e.Department] = struct{}{}
		out = append(out, e.Department)
	}
	return out
}
