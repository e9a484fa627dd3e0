package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// UserIDKey is the name the identifier is persisted under in every store.
const UserIDKey = "userId"

var (
	ErrLoadFailed = errors.New("load failed")
	ErrSaveFailed = errors.New("save failed")
)

type fileStore struct {
	root string
}

// NewFileStore keeps the id in a single file named UserIDKey under root.
func NewFileStore(root string) Store {
	return &fileStore{root: root}
}

func (s *fileStore) path() string {
	return filepath.Join(s.root, UserIDKey)
}

func (s *fileStore) Load(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("%w: %s: %v", ErrLoadFailed, s.path(), err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *fileStore) Save(_ context.Context, userID string) error {
	if err := os.MkdirAll(s.root, 0o700); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.root, err)
	}

	tmp, err := os.CreateTemp(s.root, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.path(), err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(userID + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.path(), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.path(), err)
	}

	if err := os.Rename(tmpName, s.path()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s: %v", ErrSaveFailed, s.path(), err)
	}
	return nil
}
