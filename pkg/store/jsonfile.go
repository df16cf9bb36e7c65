package store

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/millie-ai/millie/internal"
	"github.com/millie-ai/millie/pkg/models"
)

var log = internal.GetLogger()

// ReadJSON decodes the JSON file at path. A missing or unreadable file is not
// an error: the result carries fallback as its Value and a State telling the
// two cases apart.
func ReadJSON[T any](path string, fallback T) models.ReadResult[T] {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.ReadResult[T]{Value: fallback, State: models.Missing}
		}
		return models.ReadResult[T]{Value: fallback, State: models.Corrupt, Err: err}
	}

	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return models.ReadResult[T]{Value: fallback, State: models.Corrupt, Err: err}
	}

	return models.ReadResult[T]{Value: v, State: models.Loaded}
}

// WriteJSON replaces the file at path with the indented JSON encoding of v.
// The data is written to a temporary file in the same directory and renamed
// into place, so readers never observe a partially written file.
func WriteJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return NewStorageError("failed to encode "+filepath.Base(path), err)
	}

	return writeFileAtomic(path, b)
}

func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewStorageError("failed to create directory "+dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return NewStorageError("failed to create temp file", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return NewStorageError("failed to write "+tmp.Name(), err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return NewStorageError("failed to sync "+tmp.Name(), err)
	}
	if err = tmp.Close(); err != nil {
		return NewStorageError("failed to close "+tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return NewStorageError("failed to replace "+path, err)
	}

	log.Debugf("wrote %s (%s)", path, humanize.Bytes(uint64(len(data))))

	return nil
}

// logRead reports fallbacks. Missing files are expected before the first write.
func logRead[T any](name string, r models.ReadResult[T]) {
	switch r.State {
	case models.Missing:
		log.Debugf("%s not found, starting empty", name)
	case models.Corrupt:
		log.Warnf("%s could not be read, treating as empty: %v", name, r.Err)
	}
}
