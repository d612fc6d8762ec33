package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"soundblanket/internal/modules/mixer/domain"
	mixerout "soundblanket/internal/modules/mixer/port/out"
	apperrors "soundblanket/internal/platform/errors"
)

// JSONMixStore keeps every mix in one JSON object keyed by mix name. The file
// is re-read on each call and replaced atomically on each write.
type JSONMixStore struct {
	path string
	mu   sync.Mutex
}

func NewJSONMixStore(path string) mixerout.MixStore {
	return &JSONMixStore{path: path}
}

func (s *JSONMixStore) Keys(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.read()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *JSONMixStore) Exists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.read()
	if err != nil {
		return false, err
	}
	_, ok := records[name]
	return ok, nil
}

func (s *JSONMixStore) Get(_ context.Context, name string) (domain.Mix, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.read()
	if err != nil {
		return domain.Mix{}, err
	}
	rec, ok := records[name]
	if !ok {
		return domain.Mix{}, apperrors.ErrNotFound
	}
	return decodeMix(name, rec), nil
}

func (s *JSONMixStore) Put(_ context.Context, mix domain.Mix) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.read()
	if err != nil {
		return err
	}
	records[mix.Name] = encodeMix(mix)
	return s.write(records)
}

func (s *JSONMixStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := records[name]; !ok {
		return apperrors.ErrNotFound
	}
	delete(records, name)
	return s.write(records)
}

func (s *JSONMixStore) read() (map[string]mixRecord, error) {
	records := map[string]mixRecord{}
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return records, nil
		}
		return nil, fmt.Errorf("read mix store: %w", err)
	}
	if len(payload) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode mix store %s: %w", s.path, err)
	}
	return records, nil
}

func (s *JSONMixStore) write(records map[string]mixRecord) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create mix store dir: %w", err)
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mix store: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".mixes-*.json")
	if err != nil {
		return fmt.Errorf("create temp mix store: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write mix store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close mix store: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace mix store: %w", err)
	}
	return nil
}
