package storefakes

import (
	"sync"

	"github.com/feedbackportal/portal-client/credentials"
	"github.com/pkg/errors"
)

var _ credentials.Store = (*FakeStore)(nil)

// FakeStore is an in-memory credentials.Store for tests.
type FakeStore struct {
	lock   sync.RWMutex
	record *credentials.Record

	failLoad  error
	failSave  error
	failClear error
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (fs *FakeStore) Load() (*credentials.Record, error) {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	if fs.failLoad != nil {
		return nil, fs.failLoad
	}
	if fs.record == nil {
		return nil, nil
	}
	copied := *fs.record
	return &copied, nil
}

func (fs *FakeStore) Save(record credentials.Record) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if fs.failSave != nil {
		return fs.failSave
	}
	copied := record
	fs.record = &copied
	return nil
}

func (fs *FakeStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	if fs.failClear != nil {
		return fs.failClear
	}
	fs.record = nil
	return nil
}

// Stored returns the current record without the Store interface's copy
// semantics, for assertions.
func (fs *FakeStore) Stored() *credentials.Record {
	fs.lock.RLock()
	defer fs.lock.RUnlock()
	return fs.record
}

// FailNextLoad makes every subsequent Load return an error.
func (fs *FakeStore) FailNextLoad() {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.failLoad = errors.New("load failed")
}
