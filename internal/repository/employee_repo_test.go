package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"employee-directory/internal/db"
	"employee-directory/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func newSQLiteRepo(t *testing.T) *SQLEmployeeRepository {
	t.Helper()
	ctx := context.Background()
	conn, err := db.Open(ctx, db.SQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := db.Migrate(ctx, conn, db.SQLite); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSQLEmployeeRepository(conn, db.SQLite)
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)

	ann, err := repo.Create(ctx, models.Employee{FirstName: "Ann", LastName: "Lee", Department: "Sales", Birthdate: "1990-05-01"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	bob, err := repo.Create(ctx, models.Employee{FirstName: "Bob", LastName: "Lee", Department: "IT", Birthdate: "1985-06-15"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ann.ID == "" || bob.ID == "" || ann.ID == bob.ID {
		t.Fatalf("expected distinct ids, got %q %q", ann.ID, bob.ID)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0] != ann || list[1] != bob {
		t.Fatalf("unexpected list %+v", list)
	}

	ann.Department = "Marketing"
	if _, err := repo.Update(ctx, ann.ID, ann); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.Get(ctx, ann.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Department != "Marketing" {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := repo.Delete(ctx, bob.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, bob.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSQLiteMissingRows(t *testing.T) {
	ctx := context.Background()
	repo := newSQLiteRepo(t)
	if err := repo.Delete(ctx, "42"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, "42", models.Employee{FirstName: "A", LastName: "B", Department: "C", Birthdate: "1990-01-01"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Get(ctx, "not-a-number"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresListTruncatesDate(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery("SELECT id, first_name, last_name, department, date_of_birth").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "last_name", "department", "date_of_birth"}).
			AddRow(int64(7), "Ann", "Lee", "Sales", time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)))

	repo := NewSQLEmployeeRepository(conn, db.Postgres)
	list, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ID != "7" || list[0].Birthdate != "1990-05-01" {
		t.Fatalf("unexpected list %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresPlaceholders(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	mock.ExpectQuery(regexp.QuoteMeta("VALUES ($1, $2, $3, $4) RETURNING id")).
		WithArgs("Ann", "Lee", "Sales", "1990-05-01").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM employees WHERE id=$1")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewSQLEmployeeRepository(conn, db.Postgres)
	created, err := repo.Create(context.Background(), models.Employee{FirstName: "Ann", LastName: "Lee", Department: "Sales", Birthdate: "1990-05-01"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "3" {
		t.Fatalf("unexpected id %q", created.ID)
	}
	if err := repo.Delete(context.Background(), "3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("zero rows affected must be ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestQueryErrorsAreWrapped(t *testing.T) {
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer conn.Close()

	boom := errors.New("connection reset")
	mock.ExpectQuery("SELECT id").WillReturnError(boom)
	mock.ExpectExec("UPDATE employees").WillReturnError(boom)

	repo := NewSQLEmployeeRepository(conn, db.Postgres)
	if _, err := repo.List(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if _, err := repo.Update(context.Background(), "1", models.Employee{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
