package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateName = errors.New("duplicate name")
	ErrDeserialize   = errors.New("deserialize failed")
	ErrSerialize     = errors.New("serialize failed")
	ErrIO            = errors.New("io failure")
	ErrValidation    = errors.New("validation failed")
)

// ParseID parses an account identifier.
func ParseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid account id %q", ErrValidation, s)
	}
	return id, nil
}

func notFound(kind, key string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, key)
}

func duplicate(kind, name string) error {
	return fmt.Errorf("%w: %s %q already exists", ErrDuplicateName, kind, name)
}
