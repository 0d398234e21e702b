// Package repository persists the records served by the reference record
// store.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"employee-directory/internal/db"
	"employee-directory/internal/models"
)

// ErrNotFound is returned when no row has the requested id.
var ErrNotFound = errors.New("repository: employee not found")

// EmployeeRepository is the storage used by the record store handlers.
type EmployeeRepository interface {
	List(ctx context.Context) ([]models.Employee, error)
	Get(ctx context.Context, id string) (models.Employee, error)
	Create(ctx context.Context, e models.Employee) (models.Employee, error)
	Update(ctx context.Context, id string, e models.Employee) (models.Employee, error)
	Delete(ctx context.Context, id string) error
}

// SQLEmployeeRepository implements EmployeeRepository over database/sql.
type SQLEmployeeRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

// NewSQLEmployeeRepository wraps an open connection.
func NewSQLEmployeeRepository(conn *sql.DB, dialect db.Dialect) *SQLEmployeeRepository {
	return &SQLEmployeeRepository{db: conn, dialect: dialect}
}

// List returns every record, oldest first.
func (r *SQLEmployeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, first_name, last_name, department, date_of_birth
		FROM employees ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	out := make([]models.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return out, nil
}

// Get loads one record.
func (r *SQLEmployeeRepository) Get(ctx context.Context, id string) (models.Employee, error) {
	key, ok := parseID(id)
	if !ok {
		return models.Employee{}, ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT id, first_name, last_name, department, date_of_birth
		FROM employees WHERE id=`+r.dialect.Bind(1), key)
	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Employee{}, ErrNotFound
	}
	return e, err
}

// Create inserts e and returns it with its new id.
func (r *SQLEmployeeRepository) Create(ctx context.Context, e models.Employee) (models.Employee, error) {
	var newID int64
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`INSERT INTO employees (first_name, last_name, department, date_of_birth)
		VALUES (%s, %s, %s, %s) RETURNING id`, r.dialect.Bind(1), r.dialect.Bind(2), r.dialect.Bind(3), r.dialect.Bind(4)),
		e.FirstName, e.LastName, e.Department, e.Birthdate,
	).Scan(&newID)
	if err != nil {
		return models.Employee{}, fmt.Errorf("insert employee: %w", err)
	}
	e.ID = strconv.FormatInt(newID, 10)
	return e, nil
}

// Update replaces every field of the record with id.
func (r *SQLEmployeeRepository) Update(ctx context.Context, id string, e models.Employee) (models.Employee, error) {
	key, ok := parseID(id)
	if !ok {
		return models.Employee{}, ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`UPDATE employees SET first_name=%s, last_name=%s, department=%s, date_of_birth=%s
		WHERE id=%s`, r.dialect.Bind(1), r.dialect.Bind(2), r.dialect.Bind(3), r.dialect.Bind(4), r.dialect.Bind(5)),
		e.FirstName, e.LastName, e.Department, e.Birthdate, key,
	)
	if err != nil {
		return models.Employee{}, fmt.Errorf("update employee: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Employee{}, ErrNotFound
	}
	e.ID = strconv.FormatInt(key, 10)
	return e, nil
}

// Delete removes the record with id.
func (r *SQLEmployeeRepository) Delete(ctx context.Context, id string) error {
	key, ok := parseID(id)
	if !ok {
		return ErrNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM employees WHERE id=`+r.dialect.Bind(1), key)
	if err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEmployee(s scanner) (models.Employee, error) {
	var (
		id  int64
		e   models.Employee
		dob string
	)
	if err := s.Scan(&id, &e.FirstName, &e.LastName, &e.Department, &dob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Employee{}, err
		}
		return models.Employee{}, fmt.Errorf("scan employee: %w", err)
	}
	e.ID = strconv.FormatInt(id, 10)
	// DATE columns come back as RFC 3339 timestamps through database/sql
	e.Birthdate = models.DatePart(dob)
	return e, nil
}

func parseID(id string) (int64, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
