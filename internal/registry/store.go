// Package registry holds the registered face encodings. The set lives in
// memory as three parallel slices (encodings, names, regimental numbers)
// and is persisted as a single gob artifact rewritten on every addition.
package registry

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// artifact is the on-disk form of the store. Field names are part of the
// format; legacy artifacts may lack RegNos entirely.
type artifact struct {
	Encodings [][]float32
	Names     []string
	RegNos    []string
}

// Store is a file-backed set of face encodings safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	path string

	encodings [][]float32
	names     []string
	regNos    []string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the artifact from disk. A missing file is not an error, the
// store simply starts empty. A corrupt or inconsistent artifact empties
// the store and returns the decode error so the caller can log it; the
// service keeps running either way.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.encodings = nil
	s.names = nil
	s.regNos = nil

	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not open encodings file: %w", err)
	}
	defer f.Close()

	var a artifact
	if err := gob.NewDecoder(f).Decode(&a); err != nil {
		return fmt.Errorf("could not decode encodings file %s: %w", s.path, err)
	}

	if len(a.Names) != len(a.Encodings) {
		return fmt.Errorf("inconsistent encodings file %s: %d encodings, %d names",
			s.path, len(a.Encodings), len(a.Names))
	}

	// Artifacts written before regimental numbers existed carry only two
	// sequences. Fill the third so the slices stay aligned.
	if len(a.RegNos) == 0 && len(a.Names) > 0 {
		a.RegNos = make([]string, len(a.Names))
		for i := range a.RegNos {
			a.RegNos[i] = "Unknown"
		}
	}
	if len(a.RegNos) != len(a.Names) {
		return fmt.Errorf("inconsistent encodings file %s: %d names, %d regimental numbers",
			s.path, len(a.Names), len(a.RegNos))
	}

	s.encodings = a.Encodings
	s.names = a.Names
	s.regNos = a.RegNos
	return nil
}

// Add appends one encoding and persists the whole artifact. The in-memory
// set is updated only after the rewrite succeeds.
func (s *Store) Add(name, regNo string, encoding []float32) error {
	if len(encoding) == 0 {
		return fmt.Errorf("empty encoding for %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := artifact{
		Encodings: append(append([][]float32{}, s.encodings...), encoding),
		Names:     append(append([]string{}, s.names...), name),
		RegNos:    append(append([]string{}, s.regNos...), regNo),
	}
	if err := s.persist(a); err != nil {
		return err
	}

	s.encodings = a.Encodings
	s.names = a.Names
	s.regNos = a.RegNos
	return nil
}

// persist writes the artifact to a temp file in the target directory and
// renames it into place, so readers never observe a partial write.
func (s *Store) persist(a artifact) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create encodings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("could not create temp encodings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(a); err != nil {
		tmp.Close()
		return fmt.Errorf("could not encode encodings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not close temp encodings file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("could not replace encodings file: %w", err)
	}
	return nil
}

// Snapshot returns copies of the three sequences at a single point in
// time. Callers may read them without further locking.
func (s *Store) Snapshot() (encodings [][]float32, names, regNos []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	encodings = make([][]float32, len(s.encodings))
	copy(encodings, s.encodings)
	names = append([]string{}, s.names...)
	regNos = append([]string{}, s.regNos...)
	return encodings, names, regNos
}

// Count returns the number of registered encodings.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.encodings)
}
