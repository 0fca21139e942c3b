package session

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

const (
	keychainService = "w3stark"
	lastConnector   = "w3stark.last-connector"
)

// ErrNothingStored is returned when no previous connection was remembered.
var ErrNothingStored = errors.New("no remembered connector")

// Store remembers which connector was last used so AutoConnect can restore it.
type Store interface {
	LastConnector() (string, error)
	RememberConnector(id string) error
	Forget() error
}

// KeyringStore keeps the remembered connector in the OS keychain.
type KeyringStore struct {
	ring keyring.Keyring
}

// NewKeyringStore opens the OS keychain, falling back to an encrypted file
// under fileDir on headless Linux.
func NewKeyringStore(fileDir string) (*KeyringStore, error) {
	cfg := keyring.Config{
		ServiceName:              keychainService,
		KeychainTrustApplication: true,
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt(keychainService),
	}
	if runtime.GOOS == "linux" {
		cfg.AllowedBackends = []keyring.BackendType{
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		}
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		ring, err = keyring.Open(keyring.Config{
			ServiceName:      keychainService,
			AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
			FileDir:          fileDir,
			FilePasswordFunc: keyring.FixedStringPrompt(keychainService),
		})
		if err != nil {
			return nil, fmt.Errorf("opening keychain: %w", err)
		}
	}
	return &KeyringStore{ring: ring}, nil
}

// NewKeyringStoreFrom wraps an already opened keyring.
func NewKeyringStoreFrom(ring keyring.Keyring) *KeyringStore {
	return &KeyringStore{ring: ring}
}

func (s *KeyringStore) LastConnector() (string, error) {
	item, err := s.ring.Get(lastConnector)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNothingStored
	}
	if err != nil {
		return "", fmt.Errorf("keychain read: %w", err)
	}
	return string(item.Data), nil
}

func (s *KeyringStore) RememberConnector(id string) error {
	err := s.ring.Set(keyring.Item{
		Key:   lastConnector,
		Data:  []byte(id),
		Label: "w3stark last wallet connector",
	})
	if err != nil {
		return fmt.Errorf("keychain write: %w", err)
	}
	return nil
}

func (s *KeyringStore) Forget() error {
	err := s.ring.Remove(lastConnector)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("keychain remove: %w", err)
	}
	return nil
}

// MemoryStore is a process-local Store (tests, --no-remember).
type MemoryStore struct {
	mu sync.Mutex
	id string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) LastConnector() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.id == "" {
		return "", ErrNothingStored
	}
	return s.id, nil
}

func (s *MemoryStore) RememberConnector(id string) error {
	s.mu.Lock()
	s.id = id
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Forget() error {
	s.mu.Lock()
	s.id = ""
	s.mu.Unlock()
	return nil
}
