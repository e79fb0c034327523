// Copyright 2026 dotandev
// SPDX-License-Identifier: Apache-2.0

// Package eventbus is a small typed publish/subscribe bus. Session stores
// use it to push state snapshots to the CLI, the daemon's event stream and
// metrics without knowing about any of them.
package eventbus

import (
	"sync"
)

// HandlerID uniquely identifies a registered event listener.
// It is returned by Subscribe and must be passed to Unsubscribe.
type HandlerID uint64

// Handler receives one event payload.
type Handler[T any] func(payload T)

// Bus is a concurrency-safe publish/subscribe bus for payloads of type T.
// Multiple goroutines may call Emit, Subscribe, and Unsubscribe simultaneously.
type Bus[T any] struct {
	mu       sync.RWMutex
	handlers map[string]map[HandlerID]Handler[T]
	order    map[string][]HandlerID
	nextID   HandlerID
}

// New returns a new, ready-to-use Bus.
func New[T any]() *Bus[T] {
	return &Bus[T]{
		handlers: make(map[string]map[HandlerID]Handler[T]),
		order:    make(map[string][]HandlerID),
	}
}

// Subscribe registers handler to be called whenever an event of the given
// topic is emitted. It returns a HandlerID that can be used to unsubscribe.
func (b *Bus[T]) Subscribe(topic string, handler Handler[T]) HandlerID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID

	if b.handlers[topic] == nil {
		b.handlers[topic] = make(map[HandlerID]Handler[T])
	}
	b.handlers[topic][id] = handler
	b.order[topic] = append(b.order[topic], id)

	return id
}

// Unsubscribe removes the listener identified by id from the given topic.
// It is safe to call from within a Handler.
func (b *Bus[T]) Unsubscribe(topic string, id HandlerID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	listeners, ok := b.handlers[topic]
	if !ok {
		return
	}
	delete(listeners, id)

	ids := b.order[topic]
	for i, existing := range ids {
		if existing == id {
			b.order[topic] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}

	if len(listeners) == 0 {
		delete(b.handlers, topic)
		delete(b.order, topic)
	}
}

// Emit delivers payload to every handler subscribed to topic, in
// subscription order, on the calling goroutine. The handler set is
// copied first so handlers may subscribe or unsubscribe.
func (b *Bus[T]) Emit(topic string, payload T) {
	b.mu.RLock()
	ids := b.order[topic]
	snapshot := make([]Handler[T], 0, len(ids))
	for _, id := range ids {
		if h, ok := b.handlers[topic][id]; ok {
			snapshot = append(snapshot, h)
		}
	}
	b.mu.RUnlock()

	for _, h := range snapshot {
		h(payload)
	}
}

// Topics returns the list of topics that currently have at least one subscriber.
func (b *Bus[T]) Topics() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	topics := make([]string, 0, len(b.handlers))
	for t := range b.handlers {
		topics = append(topics, t)
	}
	return topics
}

// SubscriberCount returns the number of active subscribers for a topic.
func (b *Bus[T]) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers[topic])
}
