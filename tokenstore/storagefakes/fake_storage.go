package storagefakes

import (
	"sync"

	"github.com/jrsteele09/go-auth-client/tokenstore"
)

// FakeStorage is an in-memory Storage for tests. SetErr/DeleteErr can be set
// to simulate storage failures.
type FakeStorage struct {
	mu        sync.Mutex
	values    map[string]string
	SetErr    error
	DeleteErr error
}

var _ tokenstore.Storage = (*FakeStorage)(nil)

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{values: map[string]string{}}
}

func (f *FakeStorage) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.values[key]
	return value, ok
}

func (f *FakeStorage) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.values[key] = value
	return nil
}

func (f *FakeStorage) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.values, key)
	return nil
}

// Snapshot returns a copy of the stored values.
func (f *FakeStorage) Snapshot() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}
