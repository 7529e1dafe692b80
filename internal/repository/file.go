package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/mmeshcher/debtdesk/internal/model"
)

// FileRepository хранит слоты сессии в JSON-файле. Файл заменяется атомарно через переименование.
type FileRepository struct {
	mu   sync.Mutex
	path string
}

// NewFileRepository создаёт файловое хранилище по указанному пути.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load читает слоты из файла. Отсутствующий файл означает пустую сессию.
func (r *FileRepository) Load(ctx context.Context) (model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Session{}, nil
		}
		return model.Session{}, fmt.Errorf("%w: read session file: %w", ErrStorageUnavailable, err)
	}

	slots := map[string]string{}
	if err := json.Unmarshal(data, &slots); err != nil {
		return model.Session{}, fmt.Errorf("decode session file: %w", err)
	}

	return sessionFromSlots(slots), nil
}

// Save записывает все три слота одним файлом.
func (r *FileRepository) Save(ctx context.Context, s model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	slots := sessionToSlots(s)
	for k, v := range slots {
		if v == "" {
			delete(slots, k)
		}
	}

	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrStorageUnavailable, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}

	return nil
}

// Clear удаляет файл сессии.
func (r *FileRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// Close ничего не делает: файл не держится открытым.
func (r *FileRepository) Close() error { return nil }
