package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a lookup by id or credential matches no row,
	// or when a write references a row that does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when an insert collides with a unique key
	ErrConflict = errors.New("already exists")
	// ErrStorageUnavailable is returned for connection and I/O failures
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInvalid is returned for input rejected before reaching storage
	ErrInvalid = errors.New("invalid input")
)

// classify maps driver errors onto the package's error taxonomy, keeping
// the original error in the chain
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrInvalid) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var se sqlite3.Error
	if errors.As(err, &se) {
		switch se.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %w", ErrConflict, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: referenced row does not exist: %w", ErrNotFound, err)
		case sqlite3.ErrConstraintNotNull, sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%w: %w", ErrInvalid, err)
		}
	}
	return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
}

// requireAffected turns a zero-row update or delete into ErrNotFound
func requireAffected(res sql.Result, err error) error {
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
