package storage

import (
	"context"
	"errors"
	"io/fs"
	"sync"
)

// ErrNotFound is returned by a State that holds no catalog yet.
var ErrNotFound = errors.New("catalog state not found")

// State is the backing store of the ingredient catalog document.
type State interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// IsNotFound reports whether err means the state has never been written.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

// TestState is a simple in-memory implementation for testing
type TestState struct {
	mu    sync.Mutex
	data  []byte
	err   error
	saves int
}

func NewTestState(data []byte) *TestState {
	return &TestState{data: data}
}

func NewTestStateWithError() *TestState {
	return &TestState{err: errors.New("storage unavailable")}
}

func NewEmptyTestState() *TestState {
	return &TestState{err: ErrNotFound}
}

func (t *TestState) Load(ctx context.Context) ([]byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return nil, t.err
	}
	return t.data, nil
}

func (t *TestState) Save(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil && !errors.Is(t.err, ErrNotFound) {
		return t.err
	}
	t.err = nil
	t.data = append([]byte(nil), data...)
	t.saves++
	return nil
}

// Saves returns how many times Save succeeded.
func (t *TestState) Saves() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saves
}
