package storage

import (
	"errors"
	"fmt"
)

const (
	ModelsDir = "models"
)

var (
	// TODO : leaving this for now to be able to adjust for the tests
	DefaultDir = "file-storage"
)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key identifies one stored trained artifact.
type Key struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

func (k Key) Path() string {
	return fmt.Sprintf("%s_%s", k.Label, k.ID)
}

// Persistence stores and retrieves trained artifacts.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}

// VoidStorage ignores all writes and finds nothing.
type VoidStorage struct {
}

func NewVoidStorage() *VoidStorage {
	return &VoidStorage{}
}

func (d VoidStorage) Store(k Key, value interface{}) error {
	return nil
}

func (d VoidStorage) Load(k Key, value interface{}) error {
	return fmt.Errorf("not found '%v': %w", k, NotFoundErr)
}
