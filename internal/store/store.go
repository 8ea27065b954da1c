// Package store holds the Mongo repositories, one per collection.
package store

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound             = errors.New("document not found")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrInsufficientQuantity = errors.New("donation no longer has enough quantity")
	ErrStatusConflict       = errors.New("document is not in the expected status")
)

// notFound maps the driver's no-documents error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
