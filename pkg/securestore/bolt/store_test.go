package boltsecurestore_test

import (
	"testing"

	"github.com/skibidicash/wallet-core/pkg/securestore"
	boltsecurestore "github.com/skibidicash/wallet-core/pkg/securestore/bolt"
	"github.com/stretchr/testify/require"
)

var (
	password  = []byte("password")
	bucketKey = []byte("secrets")
)

func TestCreateUnlock(t *testing.T) {
	datadir := t.TempDir()

	store, err := boltsecurestore.NewSecureStorage(datadir, "test.db")
	require.NoError(t, err)
	require.True(t, store.IsLocked())

	_, err = store.GetFromBucket(nil, []byte("key"))
	require.ErrorIs(t, err, boltsecurestore.ErrStoreLocked)

	err = store.CreateUnlock(nil)
	require.ErrorIs(t, err, boltsecurestore.ErrPasswordRequired)

	err = store.CreateUnlock(&password)
	require.NoError(t, err)
	require.False(t, store.IsLocked())

	// No-op once unlocked.
	err = store.CreateUnlock(&password)
	require.NoError(t, err)

	err = store.AddToBucket(nil, []byte("key"), []byte("value"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = boltsecurestore.NewSecureStorage(datadir, "test.db")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	wrongPassword := []byte("wrong")
	err = store.CreateUnlock(&wrongPassword)
	require.ErrorIs(t, err, boltsecurestore.ErrInvalidPassword)

	err = store.CreateUnlock(&password)
	require.NoError(t, err)

	value, err := store.GetFromBucket(nil, []byte("key"))
	require.NoError(t, err)
	require.Equal(t, []byte("value"), value)
}

func TestBucketEntries(t *testing.T) {
	store := newTestStoreUnlocked(t)

	err := store.CreateBucket(bucketKey)
	require.NoError(t, err)

	err = store.AddToBucket(bucketKey, []byte("mnemonic"), []byte("secret words"))
	require.NoError(t, err)

	value, err := store.GetFromBucket(bucketKey, []byte("mnemonic"))
	require.NoError(t, err)
	require.Equal(t, []byte("secret words"), value)

	value, err = store.GetFromBucket(bucketKey, []byte("missing"))
	require.NoError(t, err)
	require.Nil(t, value)

	err = store.RemoveFromBucket(bucketKey, []byte("mnemonic"))
	require.NoError(t, err)

	value, err = store.GetFromBucket(bucketKey, []byte("mnemonic"))
	require.NoError(t, err)
	require.Nil(t, value)
}

func TestFailingBucketEntries(t *testing.T) {
	store := newTestStoreUnlocked(t)

	tests := []struct {
		name        string
		bucketKey   []byte
		key         []byte
		value       []byte
		expectedErr error
	}{
		{
			name:        "missing key",
			value:       []byte("value"),
			expectedErr: boltsecurestore.ErrMissingDataKey,
		},
		{
			name:        "forbidden key",
			key:         []byte("enckey"),
			value:       []byte("value"),
			expectedErr: boltsecurestore.ErrForbiddenDataKey,
		},
		{
			name:        "missing value",
			key:         []byte("key"),
			expectedErr: boltsecurestore.ErrMissingData,
		},
		{
			name:        "unknown bucket",
			bucketKey:   []byte("unknown"),
			key:         []byte("key"),
			value:       []byte("value"),
			expectedErr: boltsecurestore.ErrBucketNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := store.AddToBucket(tt.bucketKey, tt.key, tt.value)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}

	t.Run("bucket keys", func(t *testing.T) {
		err := store.CreateBucket(nil)
		require.ErrorIs(t, err, boltsecurestore.ErrMissingBucketKey)

		err = store.CreateBucket([]byte("enckey"))
		require.ErrorIs(t, err, boltsecurestore.ErrForbiddenBucketKey)
	})

	t.Run("store locked", func(t *testing.T) {
		store := newTestStoreUnlocked(t)
		store.Lock()

		err := store.CreateBucket(bucketKey)
		require.ErrorIs(t, err, boltsecurestore.ErrStoreLocked)

		err = store.AddToBucket(nil, []byte("key"), []byte("value"))
		require.ErrorIs(t, err, boltsecurestore.ErrStoreLocked)

		err = store.RemoveFromBucket(nil, []byte("key"))
		require.ErrorIs(t, err, boltsecurestore.ErrStoreLocked)
	})
}

func TestChangePassword(t *testing.T) {
	store := newTestStoreUnlocked(t)

	require.NoError(t, store.AddToBucket(nil, []byte("root"), []byte("a")))
	require.NoError(t, store.CreateBucket(bucketKey))
	require.NoError(t, store.AddToBucket(bucketKey, []byte("nested"), []byte("b")))

	newPassword := []byte("newpassword")
	err := store.ChangePassword(password, newPassword)
	require.NoError(t, err)

	store.Lock()

	err = store.CreateUnlock(&password)
	require.ErrorIs(t, err, boltsecurestore.ErrInvalidPassword)

	err = store.CreateUnlock(&newPassword)
	require.NoError(t, err)

	value, err := store.GetFromBucket(nil, []byte("root"))
	require.NoError(t, err)
	require.Equal(t, []byte("a"), value)

	value, err = store.GetFromBucket(bucketKey, []byte("nested"))
	require.NoError(t, err)
	require.Equal(t, []byte("b"), value)

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name        string
			oldPwd      []byte
			newPwd      []byte
			expectedErr error
		}{
			{"missing old", nil, []byte("test"), boltsecurestore.ErrPasswordRequired},
			{"missing new", newPassword, nil, boltsecurestore.ErrPasswordRequired},
			{"wrong old", []byte("wrong"), []byte("test"), boltsecurestore.ErrInvalidPassword},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				err := store.ChangePassword(tt.oldPwd, tt.newPwd)
				require.ErrorIs(t, err, tt.expectedErr)
			})
		}
	})
}

func newTestStoreUnlocked(t *testing.T) securestore.SecureStorage {
	store, err := boltsecurestore.NewSecureStorage(t.TempDir(), "test.db")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	err = store.CreateUnlock(&password)
	require.NoError(t, err)
	return store
}
