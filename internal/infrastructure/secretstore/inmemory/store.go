package inmemory

import (
	"context"
	"sync"
)

// SecretStore keeps secrets in memory only. Secrets are lost once the
// process exits.
type SecretStore struct {
	lock    *sync.RWMutex
	secrets map[string][]byte
}

func NewSecretStore() *SecretStore {
	return &SecretStore{
		lock:    &sync.RWMutex{},
		secrets: make(map[string][]byte),
	}
}

func (s *SecretStore) Get(_ context.Context, key string) ([]byte, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	value, ok := s.secrets[key]
	if !ok {
		return nil, nil
	}
	return append([]byte{}, value...), nil
}

func (s *SecretStore) Set(_ context.Context, key string, value []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.secrets[key] = append([]byte{}, value...)
	return nil
}

func (s *SecretStore) Remove(_ context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.secrets, key)
	return nil
}
