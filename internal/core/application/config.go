package application

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	dbbadger "github.com/skibidicash/wallet-core/internal/infrastructure/storage/db/badger"
	"github.com/skibidicash/wallet-core/internal/infrastructure/storage/db/inmemory"
)

const (
	DBInMemory = "inmemory"
	DBBadger   = "badger"
)

var (
	SupportedDBType = map[string]struct{}{
		DBInMemory: {},
		DBBadger:   {},
	}
)

// SupportedDBTypeList returns the sorted list of supported db types.
func SupportedDBTypeList() string {
	types := make([]string, 0, len(SupportedDBType))
	for t := range SupportedDBType {
		types = append(types, t)
	}
	sort.Strings(types)
	return strings.Join(types, ", ")
}

type Config struct {
	DBType string
	// DBConfig is the datadir of the badger db.
	DBConfig interface{}

	SecretStore   ports.SecretStore
	LedgerBackend ports.LedgerBackend

	Network          domain.Network
	APIKey           string
	OperationTimeout time.Duration
	PreparedSendTTL  time.Duration
	// EntropySize of generated seeds, 128 bits if zero.
	EntropySize int
	Clock       clock.Clock

	repo       ports.RepoManager
	keyManager KeyManagerService
	session    SessionService
	dispatcher DispatcherService
	balance    BalanceService
	payment    PaymentService
	receive    ReceiveService

	backend *backendProvider
}

func (c *Config) Validate() error {
	if c.SecretStore == nil {
		return fmt.Errorf("missing secret store")
	}
	if c.LedgerBackend == nil {
		return fmt.Errorf("missing ledger backend")
	}
	if !c.Network.IsValid() {
		return domain.ErrInvalidNetwork
	}
	if c.Network == domain.NetworkMainnet && c.APIKey == "" {
		return fmt.Errorf("api key is required for mainnet")
	}
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf(
			"db type not supported, must be one of: %s", SupportedDBTypeList(),
		)
	}
	if _, err := c.keyManagerService(); err != nil {
		return err
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	if _, err := c.sessionService(); err != nil {
		return err
	}
	if _, err := c.paymentService(); err != nil {
		return err
	}
	if _, err := c.receiveService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	repo, _ := c.repoManager()
	return repo
}

func (c *Config) KeyManagerService() KeyManagerService {
	svc, _ := c.keyManagerService()
	return svc
}

func (c *Config) SessionService() SessionService {
	svc, _ := c.sessionService()
	return svc
}

func (c *Config) DispatcherService() DispatcherService {
	svc, _ := c.dispatcherService()
	return svc
}

func (c *Config) BalanceService() BalanceService {
	svc, _ := c.balanceService()
	return svc
}

func (c *Config) PaymentService() PaymentService {
	svc, _ := c.paymentService()
	return svc
}

func (c *Config) ReceiveService() ReceiveService {
	svc, _ := c.receiveService()
	return svc
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		switch c.DBType {
		case DBBadger:
			datadir, ok := c.DBConfig.(string)
			if !ok || datadir == "" {
				return nil, fmt.Errorf("missing datadir for badger db")
			}
			repoManager, err := dbbadger.NewRepoManager(datadir, log.New())
			if err != nil {
				return nil, err
			}
			c.repo = repoManager
		case DBInMemory:
			c.repo = inmemory.NewRepoManager()
		default:
			return nil, fmt.Errorf("unknown db type %s", c.DBType)
		}
	}
	return c.repo, nil
}

func (c *Config) keyManagerService() (KeyManagerService, error) {
	if c.keyManager == nil {
		svc, err := NewKeyManagerService(c.SecretStore, c.EntropySize)
		if err != nil {
			return nil, err
		}
		c.keyManager = svc
	}
	return c.keyManager, nil
}

func (c *Config) provider() *backendProvider {
	if c.backend == nil {
		c.backend = &backendProvider{}
	}
	return c.backend
}

func (c *Config) balanceService() (BalanceService, error) {
	if c.balance == nil {
		svc, err := NewBalanceService(c.provider(), c.OperationTimeout)
		if err != nil {
			return nil, err
		}
		c.balance = svc
	}
	return c.balance, nil
}

func (c *Config) dispatcherService() (DispatcherService, error) {
	if c.dispatcher == nil {
		repo, err := c.repoManager()
		if err != nil {
			return nil, err
		}
		balance, err := c.balanceService()
		if err != nil {
			return nil, err
		}
		svc, err := NewDispatcherService(
			repo.PaymentRepository(), balance, c.provider(),
			c.OperationTimeout, c.Clock,
		)
		if err != nil {
			return nil, err
		}
		c.dispatcher = svc
	}
	return c.dispatcher, nil
}

func (c *Config) sessionService() (SessionService, error) {
	if c.session == nil {
		dispatcher, err := c.dispatcherService()
		if err != nil {
			return nil, err
		}
		svc, err := NewSessionService(
			c.LedgerBackend, dispatcher, c.OperationTimeout,
		)
		if err != nil {
			return nil, err
		}
		c.provider().session = svc
		c.session = svc
	}
	return c.session, nil
}

func (c *Config) paymentService() (PaymentService, error) {
	if c.payment == nil {
		session, err := c.sessionService()
		if err != nil {
			return nil, err
		}
		repo, _ := c.repoManager()
		balance, _ := c.balanceService()
		svc, err := NewPaymentService(
			session, repo.PaymentRepository(), balance, c.Network,
			c.OperationTimeout, c.PreparedSendTTL, c.Clock,
		)
		if err != nil {
			return nil, err
		}
		c.payment = svc
	}
	return c.payment, nil
}

func (c *Config) receiveService() (ReceiveService, error) {
	if c.receive == nil {
		session, err := c.sessionService()
		if err != nil {
			return nil, err
		}
		svc, err := NewReceiveService(session, c.OperationTimeout)
		if err != nil {
			return nil, err
		}
		c.receive = svc
	}
	return c.receive, nil
}

// backendProvider gives the balance cache and the dispatcher access to the
// backend of a session created after them.
type backendProvider struct {
	session SessionService
}

func (p *backendProvider) Backend() (ports.LedgerBackend, error) {
	if p.session == nil {
		return nil, domain.ErrNotConnected
	}
	return p.session.Backend()
}
