// Copyright (c) 2026 dotandev
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package session

import (
	"sync"
	"time"

	"github.com/dotandev/tranche/internal/errors"
	"github.com/dotandev/tranche/internal/eventbus"
	"github.com/dotandev/tranche/internal/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

// Status is the wallet connectivity of a session.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
)

// ZeroBalance is shown until a balance lookup succeeds.
const ZeroBalance = "0"

const topicState = "session.state"

// State is a read-only snapshot of a session.
type State struct {
	ID            string    `json:"id"`
	Status        Status    `json:"status"`
	Address       string    `json:"address,omitempty"`
	NativeBalance string    `json:"native_balance"`
	Busy          bool      `json:"busy"`
	Operation     string    `json:"operation,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
	LastTxHash    string    `json:"last_tx_hash,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Connected reports whether contract operations are allowed.
func (s State) Connected() bool { return s.Status == StatusConnected }

// Store owns one session. All writes go through its methods; readers get
// copies through Snapshot or change notifications.
type Store struct {
	id    string
	mu    sync.RWMutex
	state State
	bus   *eventbus.Bus[State]
	guard *semaphore.Weighted
	now   func() time.Time

	// emitMu orders publication to match commit order.
	emitMu sync.Mutex
}

// NewStore creates a disconnected session with a fresh identity.
func NewStore() *Store {
	id := uuid.NewString()
	s := &Store{
		id:    id,
		bus:   eventbus.New[State](),
		guard: semaphore.NewWeighted(1),
		now:   time.Now,
	}
	s.state = State{
		ID:            id,
		Status:        StatusDisconnected,
		NativeBalance: ZeroBalance,
		UpdatedAt:     s.now(),
	}
	return s
}

func (s *Store) ID() string { return s.id }

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn for every state change. fn runs on the goroutine
// that made the change and must not block.
func (s *Store) Subscribe(fn func(State)) eventbus.HandlerID {
	return s.bus.Subscribe(topicState, fn)
}

func (s *Store) Unsubscribe(id eventbus.HandlerID) {
	s.bus.Unsubscribe(topicState, id)
}

// update applies fn under the write lock and publishes the result.
// Subscribers run with emitMu held and must not write to the store.
func (s *Store) update(fn func(*State) error) error {
	s.emitMu.Lock()
	defer s.emitMu.Unlock()

	s.mu.Lock()
	next := s.state
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	next.UpdatedAt = s.now()
	s.state = next
	s.mu.Unlock()

	s.bus.Emit(topicState, next)
	return nil
}

func transition(st *State, from, to Status) error {
	if st.Status != from {
		return errors.WrapInvalidTransition(string(st.Status), string(to))
	}
	logger.Logger.Debug("Session transition", "session", st.ID, "from", from, "to", to)
	st.Status = to
	return nil
}

// BeginConnect moves disconnected to connecting and clears the last error.
func (s *Store) BeginConnect() error {
	return s.update(func(st *State) error {
		if err := transition(st, StatusDisconnected, StatusConnecting); err != nil {
			return err
		}
		st.LastError = ""
		return nil
	})
}

// CompleteConnect moves connecting to connected with the granted address.
func (s *Store) CompleteConnect(address string) error {
	return s.update(func(st *State) error {
		if address == "" {
			return errors.WrapValidationError("connected address is empty")
		}
		if err := transition(st, StatusConnecting, StatusConnected); err != nil {
			return err
		}
		st.Address = address
		return nil
	})
}

// FailConnect returns connecting to disconnected. A nil cause leaves no
// error behind, which is how silent reconnects give up.
func (s *Store) FailConnect(cause error) error {
	return s.update(func(st *State) error {
		if err := transition(st, StatusConnecting, StatusDisconnected); err != nil {
			return err
		}
		st.Address = ""
		st.LastError = ""
		if cause != nil {
			st.LastError = cause.Error()
		}
		return nil
	})
}

// Disconnect resets a connected session. Disconnecting an already
// disconnected session is a no-op.
func (s *Store) Disconnect() error {
	return s.update(func(st *State) error {
		if st.Status == StatusDisconnected {
			return nil
		}
		if err := transition(st, StatusConnected, StatusDisconnected); err != nil {
			return err
		}
		st.Address = ""
		st.NativeBalance = ZeroBalance
		st.LastError = ""
		st.LastTxHash = ""
		return nil
	})
}

// RequireConnected returns the session address or ErrNotConnected.
func (s *Store) RequireConnected() (string, error) {
	st := s.Snapshot()
	if !st.Connected() {
		return "", errors.ErrNotConnected
	}
	return st.Address, nil
}

// SetBalance records a native balance. It is ignored unless connected, so
// a late refresh cannot resurrect a balance after disconnect.
func (s *Store) SetBalance(balance string) {
	if balance == "" {
		balance = ZeroBalance
	}
	_ = s.update(func(st *State) error {
		if st.Status != StatusConnected {
			return errors.ErrNotConnected
		}
		st.NativeBalance = balance
		return nil
	})
}

// SetError records a failure that happened outside an operation.
func (s *Store) SetError(err error) {
	_ = s.update(func(st *State) error {
		st.LastError = ""
		if err != nil {
			st.LastError = err.Error()
		}
		return nil
	})
}

// Operation is a running state-mutating call holding the session's
// single-flight slot.
type Operation struct {
	store *Store
	name  string
	once  sync.Once
}

// BeginOperation claims the session for one state-mutating call. It sets
// busy and clears the last error. A second call while one is running fails
// with ErrOperationInProgress.
func (s *Store) BeginOperation(name string) (*Operation, error) {
	if !s.guard.TryAcquire(1) {
		current := s.Snapshot().Operation
		logger.Logger.Warn("Operation rejected, session busy", "session", s.id, "requested", name, "running", current)
		return nil, errors.ErrOperationInProgress
	}

	_ = s.update(func(st *State) error {
		st.Busy = true
		st.Operation = name
		st.LastError = ""
		return nil
	})
	return &Operation{store: s, name: name}, nil
}

// End records the outcome, clears busy and releases the slot. Only the
// first call has any effect.
func (op *Operation) End(txHash string, err error) {
	op.once.Do(func() {
		_ = op.store.update(func(st *State) error {
			st.Busy = false
			st.Operation = ""
			if err != nil {
				st.LastError = err.Error()
				return nil
			}
			if txHash != "" {
				st.LastTxHash = txHash
			}
			return nil
		})
		op.store.guard.Release(1)
	})
}

func (op *Operation) Name() string { return op.name }
