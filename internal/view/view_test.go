package view

import (
	"testing"

	"employee-directory/internal/models"
)

func sample() []models.Employee {
	return []models.Employee{
		{ID: "1", FirstName: "Ann", LastName: "Lee", Department: "Sales", Birthdate: "1990-01-01"},
		{ID: "2", FirstName: "Bob", LastName: "Lee", Department: "IT", Birthdate: "1985-06-15"},
	}
}

func ids(list []models.Employee) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.ID)
	}
	return out
}

func TestDeriveEmptyFilterIsIdentity(t *testing.T) {
	v := Derive(sample(), models.Filter{})
	if got := ids(v.Filtered); len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("expected full collection in order, got %v", got)
	}
	if v.Stats.TotalEmployees != 2 || v.Stats.SearchResults != 2 {
		t.Fatalf("unexpected stats: %+v", v.Stats)
	}
	if v.Stats.TotalDepartments != 2 {
		t.Fatalf("expected 2 departments, got %d", v.Stats.TotalDepartments)
	}
}

func TestFilterByNameSubstringIgnoresCase(t *testing.T) {
	got := ids(Filter(sample(), models.Filter{Name: "an"}))
	if len(got) != 1 || got[0] != "1" {
		t.Fatalf("expected only Ann, got %v", got)
	}
	got = ids(Filter(sample(), models.Filter{Name: "LEE"}))
	if len(got) != 2 {
		t.Fatalf("expected last name match on both, got %v", got)
	}
}

func TestFilterByDepartmentIsExactMatch(t *testing.T) {
	got := ids(Filter(sample(), models.Filter{Department: "sales"}))
	if len(got) != 1 || got[0] != "1" {
		t.Fatalf("expected only Ann, got %v", got)
	}
	if got := Filter(sample(), models.Filter{Department: "sal"}); len(got) != 0 {
		t.Fatalf("department filter must not match substrings, got %v", ids(got))
	}
}

func TestFilterCombinesCriteria(t *testing.T) {
	got := Filter(sample(), models.Filter{Name: "bob", Department: "sales"})
	if len(got) != 0 {
		t.Fatalf("expected no match, got %v", ids(got))
	}
	v := Derive(sample(), models.Filter{Name: "lee", Department: "SALES"})
	if v.Stats.SearchResults != 1 || v.Stats.TotalEmployees != 2 {
		t.Fatalf("unexpected stats: %+v", v.Stats)
	}
}

func TestDepartmentsDistinctFirstSeenOrder(t *testing.T) {
	list := append(sample(), models.Employee{ID: "3", FirstName: "Cy", LastName: "Ng", Department: "Sales"})
	got := Departments(list)
	if len(got) != 2 || got[0] != "Sales" || got[1] != "IT" {
		t.Fatalf("unexpected departments: %v", got)
	}
}

func TestDeriveEmptyCollection(t *testing.T) {
	v := Derive(nil, models.Filter{Name: "x"})
	if v.Filtered == nil || len(v.Filtered) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", v.Filtered)
	}
	if v.Stats.TotalDepartments != 0 || v.Stats.Departments == nil {
		t.Fatalf("unexpected stats: %+v", v.Stats)
	}
}
