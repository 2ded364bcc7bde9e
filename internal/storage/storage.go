// Package storage keeps small files, such as the request signing key, outside the database.
package storage

import (
	"errors"
	"os"
)

var (
	ErrNotDir        = errors.New("given root is not a directory")
	ErrInternal      = errors.New("internal error")
	ErrCreate        = errors.New("failed to create file")
	ErrAlreadyExists = errors.New("filename already exists")
	ErrNotExist      = errors.New("file does not exist")
)

type Storage interface {
	Open(name string) ([]byte, error)
	// Create writes a new file with the given permissions. It never overwrites an existing
	// file.
	Create(name string, content []byte, perm os.FileMode) error
}
