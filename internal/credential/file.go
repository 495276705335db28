package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps credentials in a JSON object on disk, readable only by the owner.
type FileStore struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

// errCorrupt marks a credential file that exists but does not decode.
var errCorrupt = errors.New("credential file is corrupt")

// DefaultFilePath returns ~/.writex/credentials.json.
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".writex", "credentials.json"), nil
}

// NewFileStore returns a store backed by the file at path. The file is
// created on first Save. An undecodable file is replaced by Save and removed
// by Clear.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if err != nil {
		return "", err
	}
	return entries[Key], nil
}

func (s *FileStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if errors.Is(err, errCorrupt) {
		s.logger.Warn("replacing corrupt credential file", slog.String("path", s.path), slog.String("error", err.Error()))
		entries, err = map[string]string{}, nil
	}
	if err != nil {
		return err
	}
	entries[Key] = token
	return s.write(entries)
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.read()
	if errors.Is(err, errCorrupt) {
		s.logger.Warn("removing corrupt credential file", slog.String("path", s.path), slog.String("error", err.Error()))
		entries, err = map[string]string{}, nil
	}
	if err != nil {
		return err
	}
	delete(entries, Key)
	if len(entries) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove credential file: %w", err)
		}
		return nil
	}
	return s.write(entries)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	entries := map[string]string{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", errCorrupt, s.path, err)
	}
	return entries, nil
}

// write replaces the file atomically so a crash never leaves half a token.
func (s *FileStore) write(entries map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credential directory: %w", err)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".credentials-*.json")
	if err != nil {
		return fmt.Errorf("create temp credential file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close credential file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}
