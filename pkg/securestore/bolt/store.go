package boltsecurestore

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/btcsuite/btcwallet/snacl"
	"github.com/skibidicash/wallet-core/pkg/securestore"
	bolt "go.etcd.io/bbolt"
)

const (
	dbOpenTimeout = time.Second
)

var (
	// RootKeyBucketName is the name of the root key store bucket.
	RootKeyBucketName = []byte("root")

	// encryptionKeyID is the name of the database key that stores the
	// encryption key, encrypted with a salted + hashed password.
	encryptionKeyID = []byte("enckey")
)

type boltSecureStorage struct {
	db *bolt.DB

	encKeyMtx sync.RWMutex
	encKey    *snacl.SecretKey
}

// NewSecureStorage creates a bolt instance of the SecureStorage interface.
func NewSecureStorage(
	datadir, filename string,
) (securestore.SecureStorage, error) {
	if err := os.MkdirAll(datadir, 0700); err != nil {
		return nil, err
	}

	db, err := bolt.Open(
		filepath.Join(datadir, filename), 0600,
		&bolt.Options{Timeout: dbOpenTimeout},
	)
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(RootKeyBucketName)
		return err
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &boltSecureStorage{db: db}, nil
}

// IsLocked returns whether the store is locked by checking if the encryption
// key is stored in-memory.
func (s *boltSecureStorage) IsLocked() bool {
	s.encKeyMtx.RLock()
	defer s.encKeyMtx.RUnlock()
	return s.encKey == nil
}

// Lock eventually locks the store by flushing the in-memory encryption key.
func (s *boltSecureStorage) Lock() {
	s.encKeyMtx.Lock()
	defer s.encKeyMtx.Unlock()
	s.lock()
}

func (s *boltSecureStorage) lock() {
	if s.encKey != nil {
		s.encKey.Zero()
		s.encKey = nil
	}
}

// CreateUnlock sets an encryption key if one is not already set, otherwise it
// checks if the password is correct for the stored encryption key.
func (s *boltSecureStorage) CreateUnlock(password *[]byte) error {
	if !s.IsLocked() {
		return nil
	}

	if password == nil {
		return ErrPasswordRequired
	}

	s.encKeyMtx.Lock()
	defer s.encKeyMtx.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(RootKeyBucketName)
		if bucket == nil {
			return ErrRootKeyBucketNotFound
		}

		dbKey := bucket.Get(encryptionKeyID)
		if len(dbKey) > 0 {
			encKey := &snacl.SecretKey{}
			if err := encKey.Unmarshal(dbKey); err != nil {
				return err
			}

			if err := encKey.DeriveKey(password); err != nil {
				return ErrInvalidPassword
			}

			s.encKey = encKey
			return nil
		}

		encKey, err := snacl.NewSecretKey(
			password, snacl.DefaultN, snacl.DefaultR, snacl.DefaultP,
		)
		if err != nil {
			return err
		}

		if err := bucket.Put(encryptionKeyID, encKey.Marshal()); err != nil {
			return err
		}

		s.encKey = encKey
		return nil
	})
}

// ChangePassword re-encrypts every value of the store, nested buckets
// included, under a key derived from the new password. The whole rotation
// happens in a single transaction.
func (s *boltSecureStorage) ChangePassword(oldPw, newPw []byte) error {
	if s.IsLocked() {
		return ErrStoreLocked
	}

	if oldPw == nil || newPw == nil {
		return ErrPasswordRequired
	}

	encKeyNew, err := snacl.NewSecretKey(
		&newPw, snacl.DefaultN, snacl.DefaultR, snacl.DefaultP,
	)
	if err != nil {
		return err
	}

	s.encKeyMtx.Lock()
	defer s.encKeyMtx.Unlock()

	return s.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket(RootKeyBucketName)
		if root == nil {
			return ErrRootKeyBucketNotFound
		}

		dbKey := root.Get(encryptionKeyID)
		if len(dbKey) <= 0 {
			return ErrEncKeyNotFound
		}
		encKeyOld := &snacl.SecretKey{}
		if err := encKeyOld.Unmarshal(dbKey); err != nil {
			return err
		}
		if err := encKeyOld.DeriveKey(&oldPw); err != nil {
			return ErrInvalidPassword
		}

		if err := reencryptBucket(root, encKeyOld, encKeyNew); err != nil {
			return err
		}

		if err := root.Put(encryptionKeyID, encKeyNew.Marshal()); err != nil {
			return err
		}

		s.lock()
		s.encKey = encKeyNew
		return nil
	})
}

// CreateBucket creates a nested bucket into the root one.
func (s *boltSecureStorage) CreateBucket(key []byte) error {
	if s.IsLocked() {
		return ErrStoreLocked
	}

	if len(key) <= 0 {
		return ErrMissingBucketKey
	}
	if bytes.Equal(key, encryptionKeyID) {
		return ErrForbiddenBucketKey
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(RootKeyBucketName)
		if bucket == nil {
			return ErrRootKeyBucketNotFound
		}
		_, err := bucket.CreateBucketIfNotExists(key)
		return err
	})
}

// AddToBucket stores the provided data encrypted into the given bucket.
// If the bucket key is nil, the key/value entry is added to the root one.
func (s *boltSecureStorage) AddToBucket(bucketKey, key, value []byte) error {
	if err := validateDataKey(key); err != nil {
		return err
	}
	if len(value) <= 0 {
		return ErrMissingData
	}

	s.encKeyMtx.RLock()
	defer s.encKeyMtx.RUnlock()

	if s.encKey == nil {
		return ErrStoreLocked
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := getBucket(tx, bucketKey)
		if err != nil {
			return err
		}

		encryptedValue, err := s.encKey.Encrypt(value)
		if err != nil {
			return err
		}

		return bucket.Put(key, encryptedValue)
	})
}

// GetFromBucket retrieves data for the given key and bucket. If the bucket key
// is nil, data is retrieved from the root bucket.
func (s *boltSecureStorage) GetFromBucket(bucketKey, key []byte) ([]byte, error) {
	if err := validateDataKey(key); err != nil {
		return nil, err
	}

	s.encKeyMtx.RLock()
	defer s.encKeyMtx.RUnlock()

	if s.encKey == nil {
		return nil, ErrStoreLocked
	}

	var value []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		bucket, err := getBucket(tx, bucketKey)
		if err != nil {
			return err
		}

		encryptedValue := bucket.Get(key)
		if len(encryptedValue) <= 0 {
			return nil
		}

		v, err := s.encKey.Decrypt(encryptedValue)
		if err != nil {
			return err
		}

		value = make([]byte, len(v))
		copy(value, v)
		return nil
	}); err != nil {
		return nil, err
	}

	return value, nil
}

// RemoveFromBucket removes the entry identified by the given key for the given
// bucket. If bucket key is nil, the entry is removed from the root bucket.
func (s *boltSecureStorage) RemoveFromBucket(bucketKey, key []byte) error {
	if s.IsLocked() {
		return ErrStoreLocked
	}
	if err := validateDataKey(key); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := getBucket(tx, bucketKey)
		if err != nil {
			return err
		}
		return bucket.Delete(key)
	})
}

// Close closes the underlying database and zeroes the encryption key stored
// in memory.
func (s *boltSecureStorage) Close() error {
	s.Lock()
	return s.db.Close()
}

func getBucket(tx *bolt.Tx, bucketKey []byte) (*bolt.Bucket, error) {
	bucket := tx.Bucket(RootKeyBucketName)
	if bucket == nil {
		return nil, ErrRootKeyBucketNotFound
	}
	if len(bucketKey) > 0 {
		bucket = bucket.Bucket(bucketKey)
		if bucket == nil {
			return nil, ErrBucketNotFound
		}
	}
	return bucket, nil
}

func reencryptBucket(bucket *bolt.Bucket, oldKey, newKey *snacl.SecretKey) error {
	type entry struct {
		key, value []byte
	}
	entries := make([]entry, 0)
	nested := make([][]byte, 0)

	if err := bucket.ForEach(func(k, v []byte) error {
		if bytes.Equal(k, encryptionKeyID) {
			return nil
		}
		key := append([]byte{}, k...)
		if v == nil {
			nested = append(nested, key)
			return nil
		}
		plain, err := oldKey.Decrypt(v)
		if err != nil {
			return err
		}
		value, err := newKey.Encrypt(plain)
		if err != nil {
			return err
		}
		entries = append(entries, entry{key, value})
		return nil
	}); err != nil {
		return err
	}

	// bolt forbids mutating a bucket while iterating it.
	for _, e := range entries {
		if err := bucket.Put(e.key, e.value); err != nil {
			return err
		}
	}
	for _, key := range nested {
		if err := reencryptBucket(bucket.Bucket(key), oldKey, newKey); err != nil {
			return err
		}
	}
	return nil
}

func validateDataKey(key []byte) error {
	if len(key) <= 0 {
		return ErrMissingDataKey
	}
	if bytes.Equal(key, encryptionKeyID) {
		return ErrForbiddenDataKey
	}
	return nil
}
