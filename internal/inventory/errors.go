package inventory

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

// ValidationError reports a form field that is missing or cannot be coerced
// to its column type. Nothing has been written when it is returned.
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("campo %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("campo %q: valor %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

type NotFoundError struct {
	ID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("producto %d no encontrado", e.ID)
}

// StorageError wraps any failure coming back from the database, including a
// lock wait that ran out.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Busy reports whether the operation gave up waiting for another writer.
func (e *StorageError) Busy() bool {
	var sqErr sqlite3.Error
	if errors.As(e.Err, &sqErr) {
		return sqErr.Code == sqlite3.ErrBusy || sqErr.Code == sqlite3.ErrLocked
	}
	var pgErr *pgconn.PgError
	if errors.As(e.Err, &pgErr) {
		// lock_not_available
		return pgErr.Code == "55P03"
	}
	return false
}

var (
	errMissing   = errors.New("obligatorio")
	errNotInt    = errors.New("debe ser un número entero")
	errNotNumber = errors.New("debe ser un número")
	errBadForm   = errors.New("formulario mal formado")
)

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
