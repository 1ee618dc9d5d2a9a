package tokens

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// Area is a flat key-value storage area. The client keeps two of them: an
// ephemeral one scoped to the running process and a durable one that
// survives restarts. Mirrors the browser's sessionStorage/localStorage pair.
type Area interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

// MemoryArea is the ephemeral storage area.
type MemoryArea struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryArea creates an empty in-process storage area.
func NewMemoryArea() *MemoryArea {
	return &MemoryArea{values: make(map[string]string)}
}

func (a *MemoryArea) Get(key string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.values[key]
	return v, ok
}

func (a *MemoryArea) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.values[key] = value
	return nil
}

func (a *MemoryArea) Delete(key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.values, key)
	return nil
}

const (
	storeFileName = "store.bin"
	keyFileName   = "store.key"
)

// FileArea is the durable storage area. Values are kept as a single
// encrypted blob (XChaCha20-Poly1305) under the client data directory; the
// key is generated on first use and stored next to it with 0600 permissions.
type FileArea struct {
	mu   sync.Mutex
	dir  string
	aead func() ([]byte, error)
}

// NewFileArea creates a durable storage area rooted at dir. The directory is
// created on demand.
func NewFileArea(dir string) *FileArea {
	a := &FileArea{dir: dir}
	a.aead = a.loadOrCreateKey
	return a
}

func (a *FileArea) Get(key string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	values, err := a.read()
	if err != nil {
		return "", false
	}
	v, ok := values[key]
	return v, ok
}

func (a *FileArea) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	values, err := a.read()
	if err != nil {
		return fmt.Errorf("[FileArea.Set] read: %w", err)
	}
	values[key] = value
	return a.write(values)
}

func (a *FileArea) Delete(key string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	values, err := a.read()
	if err != nil {
		return fmt.Errorf("[FileArea.Delete] read: %w", err)
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return a.write(values)
}

func (a *FileArea) read() (map[string]string, error) {
	raw, err := os.ReadFile(filepath.Join(a.dir, storeFileName))
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	key, err := a.aead()
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	if len(raw) < aead.NonceSize() {
		return nil, fmt.Errorf("store file truncated")
	}
	nonce, sealed := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("store file decrypt: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(plain, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func (a *FileArea) write(values map[string]string) error {
	if err := os.MkdirAll(a.dir, 0o700); err != nil {
		return err
	}
	plain, err := json.Marshal(values)
	if err != nil {
		return err
	}

	key, err := a.aead()
	if err != nil {
		return err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return err
	}
	sealed := aead.Seal(nonce, nonce, plain, nil)
	return os.WriteFile(filepath.Join(a.dir, storeFileName), sealed, 0o600)
}

func (a *FileArea) loadOrCreateKey() ([]byte, error) {
	path := filepath.Join(a.dir, keyFileName)
	key, err := os.ReadFile(path)
	if err == nil && len(key) == chacha20poly1305.KeySize {
		return key, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(a.dir, 0o700); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}
