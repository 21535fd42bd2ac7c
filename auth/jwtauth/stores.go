// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package jwtauth

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"rivaas.dev/jsonrest/auth"
)

// ErrNotFound is returned by stores for unknown records. Policies map it
// to the appropriate authentication failure; it never reaches the wire as
// is.
var ErrNotFound = errors.New("record not found")

// ConsumerStore resolves consumer records. Persistence stays external;
// implementations typically wrap a database table.
type ConsumerStore interface {
	// Consumer returns the record for the UID, or ErrNotFound.
	Consumer(ctx context.Context, uid uuid.UUID) (*Consumer, error)
}

// TokenStore persists issued token records. A token whose record is gone
// no longer verifies, which is how revocation works.
type TokenStore interface {
	// Token returns the record with the given ID (jti), or ErrNotFound.
	Token(ctx context.Context, id string) (*Token, error)

	// Save persists a freshly issued token record.
	Save(ctx context.Context, token *Token) error
}

// UserStore authenticates and resolves end users. Implementations wrap
// whatever account system the application uses.
type UserStore interface {
	// VerifyCredential checks a username/password pair and returns the
	// user's identity, or an Authentication-kind error.
	VerifyCredential(ctx context.Context, username, password string) (auth.Identity, error)

	// User resolves a token subject to the user's identity, or
	// ErrNotFound.
	User(ctx context.Context, subject string) (auth.Identity, error)
}

// MemoryConsumers is an in-memory ConsumerStore for development and tests.
type MemoryConsumers struct {
	mu        sync.RWMutex
	consumers map[uuid.UUID]*Consumer
}

// NewMemoryConsumers creates an empty in-memory consumer store.
func NewMemoryConsumers() *MemoryConsumers {
	return &MemoryConsumers{consumers: make(map[uuid.UUID]*Consumer)}
}

// Put stores or replaces a consumer record.
func (m *MemoryConsumers) Put(consumer *Consumer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consumers[consumer.UID] = consumer
}

// Consumer implements ConsumerStore.
func (m *MemoryConsumers) Consumer(_ context.Context, uid uuid.UUID) (*Consumer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	consumer, ok := m.consumers[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return consumer, nil
}

// MemoryTokens is an in-memory TokenStore for development and tests.
type MemoryTokens struct {
	mu     sync.RWMutex
	tokens map[string]*Token
}

// NewMemoryTokens creates an empty in-memory token store.
func NewMemoryTokens() *MemoryTokens {
	return &MemoryTokens{tokens: make(map[string]*Token)}
}

// Token implements TokenStore.
func (m *MemoryTokens) Token(_ context.Context, id string) (*Token, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	token, ok := m.tokens[id]
	if !ok {
		return nil, ErrNotFound
	}
	return token, nil
}

// Save implements TokenStore.
func (m *MemoryTokens) Save(_ context.Context, token *Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token.ID] = token
	return nil
}

// Revoke drops a token record, invalidating its JWT ahead of expiry.
func (m *MemoryTokens) Revoke(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, id)
}

// UserIdentity is the identity produced by the in-memory user store.
type UserIdentity string

// Principal returns the username.
func (u UserIdentity) Principal() string {
	return string(u)
}

// MemoryUsers is an in-memory UserStore for development and tests. Keys
// are usernames, values clear-text passwords; never use it in production.
type MemoryUsers struct {
	mu        sync.RWMutex
	passwords map[string]string
}

// NewMemoryUsers creates an empty in-memory user store.
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{passwords: make(map[string]string)}
}

// Put stores or replaces a user.
func (m *MemoryUsers) Put(username, password string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.passwords[username] = password
}

// VerifyCredential implements UserStore.
func (m *MemoryUsers) VerifyCredential(_ context.Context, username, password string) (auth.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stored, ok := m.passwords[username]
	if !ok || stored != password {
		return nil, ErrNotFound
	}
	return UserIdentity(username), nil
}

// User implements UserStore.
func (m *MemoryUsers) User(_ context.Context, subject string) (auth.Identity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.passwords[subject]; !ok {
		return nil, ErrNotFound
	}
	return UserIdentity(subject), nil
}
