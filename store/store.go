// Package store persists surveys, responses and answers over database/sql.
// Sensitive answers are encrypted on the save path and come back out as
// their ciphertext variant; decryption happens at the engine's answer
// accessor.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Taycode/survey-app-api/model"
	"github.com/gofrs/uuid"
)

// Encrypter seals a plaintext answer value for storage.
type Encrypter interface {
	Encrypt(plaintext string) ([]byte, error)
}

type Store struct {
	db  *sql.DB
	enc Encrypter
}

func New(db *sql.DB, enc Encrypter) *Store {
	return &Store{db: db, enc: enc}
}

// DB exposes the underlying handle for the auth layer's credential queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func newID() (string, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, model.ErrNotFound)
}

func scanErr(err error, what, id string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(what, id)
	}
	return err
}

// verifyHit turns a zero-row UPDATE/DELETE into a not-found error.
func verifyHit(res sql.Result, what, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return notFound(what, id)
	}
	return nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}
