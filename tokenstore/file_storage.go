package tokenstore

import (
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

const (
	tokenFileName = "tokens.dat"
	keyFileName   = "storage.key"
)

// FileStorage persists token state as a single encrypted file. Values are
// encrypted at rest with ChaCha20-Poly1305 under a machine-local key created
// on first use, so a copied token file is useless without the key file.
//
// A corrupt or undecryptable token file is treated as absence of tokens, not
// an error.
type FileStorage struct {
	mu     sync.Mutex
	path   string
	cipher []byte
	values map[string]string
}

var _ Storage = (*FileStorage)(nil)

// NewFileStorage opens (or initialises) encrypted token storage under dir.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "[NewFileStorage] create storage folder")
	}
	key, err := loadOrCreateKey(filepath.Join(dir, keyFileName))
	if err != nil {
		return nil, errors.Wrap(err, "[NewFileStorage] storage key")
	}
	fs := &FileStorage{
		path:   filepath.Join(dir, tokenFileName),
		cipher: key,
		values: map[string]string{},
	}
	fs.loadFile()
	return fs, nil
}

func (fs *FileStorage) Get(key string) (string, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	value, ok := fs.values[key]
	return value, ok
}

func (fs *FileStorage) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.values[key] = value
	return fs.writeFileLocked()
}

func (fs *FileStorage) Delete(key string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if _, ok := fs.values[key]; !ok {
		return nil
	}
	delete(fs.values, key)
	return fs.writeFileLocked()
}

func (fs *FileStorage) loadFile() {
	raw, err := os.ReadFile(fs.path)
	if err != nil {
		return
	}
	aead, err := chacha20poly1305.NewX(fs.cipher)
	if err != nil || len(raw) < aead.NonceSize() {
		return
	}
	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return
	}
	values := map[string]string{}
	if err := json.Unmarshal(plaintext, &values); err != nil {
		return
	}
	fs.values = values
}

func (fs *FileStorage) writeFileLocked() error {
	plaintext, err := json.Marshal(fs.values)
	if err != nil {
		return errors.Wrap(err, "[FileStorage] marshal values")
	}
	aead, err := chacha20poly1305.NewX(fs.cipher)
	if err != nil {
		return errors.Wrap(err, "[FileStorage] cipher")
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return errors.Wrap(err, "[FileStorage] nonce")
	}
	sealed := aead.Seal(nonce, nonce, plaintext, nil)
	if err := os.WriteFile(fs.path, sealed, 0o600); err != nil {
		return errors.Wrap(err, "[FileStorage] write token file")
	}
	return nil
}

func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil && len(key) == chacha20poly1305.KeySize {
		return key, nil
	}
	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Wrap(err, "rand.Read")
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, errors.Wrap(err, "write key file")
	}
	return key, nil
}
