package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	log "github.com/sirupsen/logrus"
	"github.com/skibidicash/wallet-core/internal/core/application"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	"github.com/skibidicash/wallet-core/internal/infrastructure/secretstore"

	"github.com/spf13/viper"
)

const (
	// NetworkKey is the network the wallet operates on, one of mainnet,
	// testnet, regtest
	NetworkKey = "NETWORK"
	// APIKeyKey is the credential used to authenticate against the ledger
	// backend. It is mandatory on mainnet
	APIKeyKey = "API_KEY"
	// OperationTimeoutKey bounds every single call to the ledger backend
	OperationTimeoutKey = "OPERATION_TIMEOUT"
	// PreparedSendTTLKey is how long a prepared send can be executed before
	// it must be prepared again
	PreparedSendTTLKey = "PREPARED_SEND_TTL"
	// DatadirKey is the local data directory to store the internal state of
	// the wallet
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// SecretStorePasswordKey is the password used to encrypt the secret
	// store at rest. It is required to build the wallet
	SecretStorePasswordKey = "SECRET_STORE_PASSWORD"

	DbLocation          = "db"
	SecretStoreLocation = "secrets"
)

// ErrMissingSecretStorePassword is returned when building the wallet without
// a password for the secret store. Seeds are never kept in memory only.
var ErrMissingSecretStorePassword = fmt.Errorf(
	"%s is required to persist the wallet seed", SecretStorePasswordKey,
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("wallet-core", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("WALLET")
	vip.AutomaticEnv()

	vip.SetDefault(NetworkKey, domain.NetworkTestnet.String())
	vip.SetDefault(OperationTimeoutKey, 30*time.Second)
	vip.SetDefault(PreparedSendTTLKey, time.Minute)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, application.DBBadger)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

// Set overrides the value of the given key. Mostly useful in tests.
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetNetwork() domain.Network {
	return domain.Network(GetString(NetworkKey))
}

func GetDbDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

func GetSecretStoreDir() string {
	return filepath.Join(GetDatadir(), SecretStoreLocation)
}

// GetAppConfig builds the application config for the given ledger backend
// out of the loaded configuration. It also sets the log level.
func GetAppConfig(ledger ports.LedgerBackend) (*application.Config, error) {
	log.SetLevel(log.Level(GetInt(LogLevelKey)))

	password := GetString(SecretStorePasswordKey)
	if password == "" {
		return nil, ErrMissingSecretStorePassword
	}
	store, err := secretstore.NewBoltSecretStore(GetSecretStoreDir(), password)
	if err != nil {
		return nil, err
	}

	return &application.Config{
		DBType:           GetString(DBTypeKey),
		DBConfig:         GetDbDir(),
		SecretStore:      store,
		LedgerBackend:    ledger,
		Network:          GetNetwork(),
		APIKey:           GetString(APIKeyKey),
		OperationTimeout: GetDuration(OperationTimeoutKey),
		PreparedSendTTL:  GetDuration(PreparedSendTTLKey),
	}, nil
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	net, err := domain.ParseNetwork(GetString(NetworkKey))
	if err != nil {
		return err
	}
	if net == domain.NetworkMainnet && GetString(APIKeyKey) == "" {
		return fmt.Errorf("%s is required on %s", APIKeyKey, net)
	}

	if GetDuration(OperationTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be a positive duration", OperationTimeoutKey)
	}
	if GetDuration(PreparedSendTTLKey) <= 0 {
		return fmt.Errorf("%s must be a positive duration", PreparedSendTTLKey)
	}

	dbType := GetString(DBTypeKey)
	if _, ok := application.SupportedDBType[dbType]; !ok {
		return fmt.Errorf(
			"%s must be one of %v", DBTypeKey, application.SupportedDBTypeList(),
		)
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if GetString(DBTypeKey) == application.DBBadger {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
			return err
		}
	}

	if GetString(SecretStorePasswordKey) != "" {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, SecretStoreLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
