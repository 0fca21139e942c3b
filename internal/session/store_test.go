package session

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyringStoreRoundTrip(t *testing.T) {
	s := NewKeyringStoreFrom(keyring.NewArrayKeyring(nil))

	_, err := s.LastConnector()
	assert.ErrorIs(t, err, ErrNothingStored)

	require.NoError(t, s.RememberConnector("controller"))
	id, err := s.LastConnector()
	require.NoError(t, err)
	assert.Equal(t, "controller", id)

	require.NoError(t, s.Forget())
	_, err = s.LastConnector()
	assert.ErrorIs(t, err, ErrNothingStored)
}

func TestKeyringStoreForgetWhenEmpty(t *testing.T) {
	s := NewKeyringStoreFrom(keyring.NewArrayKeyring(nil))
	assert.NoError(t, s.Forget())
}

func TestFileKeyringStore(t *testing.T) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName:      keychainService,
		AllowedBackends:  []keyring.BackendType{keyring.FileBackend},
		FileDir:          t.TempDir(),
		FilePasswordFunc: keyring.FixedStringPrompt("test"),
	})
	require.NoError(t, err)
	s := NewKeyringStoreFrom(ring)

	require.NoError(t, s.RememberConnector("controller"))
	id, err := s.LastConnector()
	require.NoError(t, err)
	assert.Equal(t, "controller", id)
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.LastConnector()
	assert.ErrorIs(t, err, ErrNothingStored)

	require.NoError(t, s.RememberConnector("a"))
	require.NoError(t, s.RememberConnector("b"))
	id, err := s.LastConnector()
	require.NoError(t, err)
	assert.Equal(t, "b", id)

	require.NoError(t, s.Forget())
	_, err = s.LastConnector()
	assert.ErrorIs(t, err, ErrNothingStored)
}
