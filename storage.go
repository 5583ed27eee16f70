package arthax

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/viant/afs"
)

// Storage is a string key/value medium scoped to one origin, modeled after the
// browser's local storage.
type Storage interface {
	GetItem(key string) (value string, ok bool, err error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// MemoryStorage is a volatile Storage.
type MemoryStorage struct {
	mu    sync.Mutex
	items map[string]string
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (s *MemoryStorage) GetItem(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemoryStorage) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func (s *MemoryStorage) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// FileStorage persists all the items of an origin in a single JSON document.
//
// The document lives at <dir>/<origin>/storage.json where origin is derived from
// the backend URL (scheme, host and port), so two backends never share an
// identity. Any URL understood by afs can be used as dir.
type FileStorage struct {
	mu  sync.Mutex
	fs  afs.Service
	url string
}

// NewFileStorage returns the storage of origin under dir.
func NewFileStorage(dir, origin string) *FileStorage {
	return &FileStorage{
		fs:  afs.New(),
		url: strings.TrimRight(dir, "/") + "/" + OriginKey(origin) + "/storage.json",
	}
}

// OriginKey turns a URL into a name usable as a directory, e.g.
// "http://localhost:5000" becomes "http_localhost_5000".
func OriginKey(origin string) string {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil || u.Host == "" {
		return "default"
	}
	scheme := u.Scheme
	if scheme == "" {
		scheme = "http"
	}
	key := scheme + "_" + strings.ReplaceAll(u.Host, ":", "_")
	return strings.ToLower(key)
}

func (s *FileStorage) load(ctx context.Context) (map[string]string, error) {
	items := make(map[string]string)
	exists, err := s.fs.Exists(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("cannot check storage %q: %w", s.url, err)
	}
	if !exists {
		return items, nil
	}
	data, err := s.fs.DownloadWithURL(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("cannot read storage %q: %w", s.url, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("cannot decode storage %q: %w", s.url, err)
	}
	return items, nil
}

func (s *FileStorage) save(ctx context.Context, items map[string]string) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	if err := s.fs.Upload(ctx, s.url, 0600, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("cannot write storage %q: %w", s.url, err)
	}
	return nil
}

func (s *FileStorage) GetItem(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.load(context.Background())
	if err != nil {
		return "", false, err
	}
	v, ok := items[key]
	return v, ok, nil
}

func (s *FileStorage) SetItem(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx := context.Background()
	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	items[key] = value
	return s.save(ctx, items)
}

func (s *FileStorage) RemoveItem(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx := context.Background()
	items, err := s.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return s.save(ctx, items)
}
