package validation

import (
	"testing"
	"time"

	"employee-directory/internal/models"
)

var today = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func validDraft() models.Employee {
	return models.Employee{FirstName: "Ann", LastName: "Lee", Department: "Sales", Birthdate: "1990-05-01"}
}

func TestValidateAcceptsCompleteDraft(t *testing.T) {
	if res := Validate(validDraft(), nil, "", today); !res.Valid() {
		t.Fatalf("expected valid, got %v", res)
	}
}

func TestValidateRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		draft  models.Employee
		fields []string
	}{
		{"first name blank", models.Employee{FirstName: "  ", LastName: "Lee", Department: "Sales", Birthdate: "1990-05-01"}, []string{FieldFirstName}},
		{"last name empty", models.Employee{FirstName: "Ann", Department: "Sales", Birthdate: "1990-05-01"}, []string{FieldLastName}},
		{"department tabs", models.Employee{FirstName: "Ann", LastName: "Lee", Department: "\t", Birthdate: "1990-05-01"}, []string{FieldDepartment}},
		{"birthdate missing", models.Employee{FirstName: "Ann", LastName: "Lee", Department: "Sales"}, []string{FieldBirthdate}},
		{"everything empty", models.Employee{}, []string{FieldFirstName, FieldLastName, FieldDepartment, FieldBirthdate}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Validate(tc.draft, nil, "", today)
			if len(res) != len(tc.fields) {
				t.Fatalf("expected %d errors, got %v", len(tc.fields), res)
			}
			for _, f := range tc.fields {
				if res[f].Code != CodeRequired {
					t.Fatalf("expected Required on %s, got %+v", f, res[f])
				}
				if res[f].Message == "" {
					t.Fatalf("expected message on %s", f)
				}
			}
		})
	}
}

func TestValidateBirthdateRules(t *testing.T) {
	cases := []struct {
		birthdate string
		want      Code
	}{
		{"2026-10-17", CodeFutureDate},
		{"2030-01-01", CodeFutureDate},
		{"2008-10-16", ""},
		{"2008-10-17", CodeUnderage},
		{"2008-10-15", ""},
		{"2026-10-16", CodeUnderage},
		{"16/10/1990", CodeInvalidDate},
		{"1990-13-01", CodeInvalidDate},
	}
	for _, tc := range cases {
		t.Run(tc.birthdate, func(t *testing.T) {
			d := validDraft()
			d.Birthdate = tc.birthdate
			res := Validate(d, nil, "", today)
			got := res[FieldBirthdate].Code
			if got != tc.want {
				t.Fatalf("birthdate %s: expected %q, got %q", tc.birthdate, tc.want, got)
			}
		})
	}
}

func TestAge(t *testing.T) {
	birth := time.Date(2000, 2, 29, 0, 0, 0, 0, time.UTC)
	if got := Age(birth, time.Date(2018, 2, 28, 0, 0, 0, 0, time.UTC)); got != 17 {
		t.Fatalf("expected 17 the day before a leap birthday, got %d", got)
	}
	if got := Age(birth, time.Date(2018, 3, 1, 0, 0, 0, 0, time.UTC)); got != 18 {
		t.Fatalf("expected 18, got %d", got)
	}
}

func TestValidateDuplicateName(t *testing.T) {
	collection := []models.Employee{
		{ID: "7", FirstName: "Ann", LastName: "Lee", Department: "Sales", Birthdate: "1990-05-01"},
	}
	d := validDraft()
	d.FirstName = "  aNN "
	d.LastName = "LEE"
	res := Validate(d, collection, "", today)
	if res[FieldFirstName].Code != CodeDuplicateName || res[FieldLastName].Code != CodeDuplicateName {
		t.Fatalf("expected DuplicateName on both names, got %v", res)
	}

	edit := collection[0]
	if res := Validate(edit, collection, edit.ID, today); !res.Valid() {
		t.Fatalf("editing the same record must not be a duplicate, got %v", res)
	}

	other := validDraft()
	other.LastName = "Leeds"
	if res := Validate(other, collection, "", today); !res.Valid() {
		t.Fatalf("different last name must pass, got %v", res)
	}
}

func TestValidateReportsAllFailuresTogether(t *testing.T) {
	collection := []models.Employee{{ID: "1", FirstName: "Ann", LastName: "Lee", Department: "IT", Birthdate: "1980-01-01"}}
	d := models.Employee{FirstName: "Ann", LastName: "Lee", Department: "", Birthdate: "2020-01-01"}
	res := Validate(d, collection, "", today)
	if len(res) != 4 {
		t.Fatalf("expected 4 field errors, got %v", res)
	}
	if res[FieldDepartment].Code != CodeRequired || res[FieldBirthdate].Code != CodeUnderage {
		t.Fatalf("unexpected result %v", res)
	}
	if res.Messages()[FieldFirstName] == "" {
		t.Fatalf("expected message for first name")
	}
}

func TestBlankNamesNeverDuplicate(t *testing.T) {
	collection := []models.Employee{{ID: "1", FirstName: "", LastName: "", Department: "IT", Birthdate: "1980-01-01"}}
	res := Validate(models.Employee{Department: "IT", Birthdate: "1980-01-01"}, collection, "", today)
	if res[FieldFirstName].Code != CodeRequired || res[FieldLastName].Code != CodeRequired {
		t.Fatalf("expected Required on blank names, got %v", res)
	}
}
