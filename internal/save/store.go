package save

import (
	"errors"
	"os"
	"path/filepath"
)

// Store reads and writes one save file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Save writes snap through a temp file and rename, so a crash mid-write
// leaves the previous save intact.
func (s *Store) Save(snap Snapshot) error {
	b, err := Encode(snap)
	if err != nil {
		return err
	}
	return s.write(b)
}

func (s *Store) write(b []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Load reads the save file. A missing file reports ok == false and no error.
func (s *Store) Load() (snap Snapshot, ok bool, err error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	snap, err = Decode(b)
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}
