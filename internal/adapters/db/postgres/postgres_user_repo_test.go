package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("CreateUser: %w", &pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})
	if !isUniqueViolation(dup) {
		t.Fatal("wrapped 23505 from the driver not detected as unique violation")
	}

	if isUniqueViolation(&pgconn.PgError{Code: "23503"}) {
		t.Fatal("foreign key violation misread as unique violation")
	}
	if isUniqueViolation(errors.New("connection refused")) {
		t.Fatal("plain error misread as unique violation")
	}
}
