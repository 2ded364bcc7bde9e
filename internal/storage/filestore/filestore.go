package filestore

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/sidereusnuntius/donata/internal/storage"
)

// FileStore keeps files flat in a single directory.
type FileStore struct {
	Root string
}

var _ storage.Storage = (*FileStore)(nil)

// New opens the store at root, creating the directory, readable only by its owner, when it
// does not exist.
func New(root string) (*FileStore, error) {
	info, err := os.Stat(root)
	if err == nil {
		if !info.IsDir() {
			log.Error().Str("root", root).Msg("not a directory")
			return nil, storage.ErrNotDir
		}
		return &FileStore{Root: root}, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		err = os.MkdirAll(root, 0o700)
	}
	if err != nil {
		log.Error().Err(err).Str("root", root).Msg("internal error when setting up storage")
		return nil, storage.ErrInternal
	}
	return &FileStore{Root: root}, nil
}

func (s *FileStore) path(name string) string {
	return filepath.Join(s.Root, filepath.Base(name))
}

func (s *FileStore) Open(name string) ([]byte, error) {
	content, err := os.ReadFile(s.path(name))
	switch {
	case err == nil:
		return content, nil
	case errors.Is(err, os.ErrNotExist):
		return nil, storage.ErrNotExist
	default:
		log.Error().Err(err).Str("name", name).Msg("failed to read file")
		return nil, storage.ErrInternal
	}
}

func (s *FileStore) Create(name string, content []byte, perm os.FileMode) error {
	file, err := os.OpenFile(s.path(name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return storage.ErrAlreadyExists
		}
		log.Error().Err(err).Str("name", name).Msg("failed to create file")
		return storage.ErrCreate
	}

	if _, err = file.Write(content); err != nil {
		file.Close()
		log.Error().Err(err).Str("name", name).Msg("failed to write file")
		return storage.ErrInternal
	}
	if err = file.Close(); err != nil {
		log.Error().Err(err).Str("name", name).Msg("failed to close file")
		return storage.ErrInternal
	}
	return nil
}
