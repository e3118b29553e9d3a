package balance

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/skibidicash/wallet-core/internal/core/domain"
	"github.com/skibidicash/wallet-core/internal/core/ports"
	"github.com/skibidicash/wallet-core/pkg/circuitbreaker"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

// BackendProvider returns the ledger backend of the current session, or an
// error if the session is not connected.
type BackendProvider interface {
	Backend() (ports.LedgerBackend, error)
}

// Cache holds the last wallet snapshot reported by the ledger backend.
// Snapshots are swapped as a whole so readers never observe a partially
// updated one.
type Cache struct {
	provider BackendProvider
	timeout  time.Duration
	cb       *gobreaker.CircuitBreaker

	group    singleflight.Group
	snapshot atomic.Pointer[domain.WalletInfo]
	// epoch is bumped by Reset. A refresh started in an older epoch is not
	// published.
	epoch uint64

	lock    *sync.Mutex
	running bool
	pending bool
	idle    *sync.Cond
}

func NewCache(provider BackendProvider, timeout time.Duration) (*Cache, error) {
	if provider == nil {
		return nil, fmt.Errorf("missing backend provider")
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("timeout must be a positive duration")
	}

	lock := &sync.Mutex{}
	return &Cache{
		provider: provider,
		timeout:  timeout,
		cb:       circuitbreaker.NewCircuitBreaker("balance"),
		lock:     lock,
		idle:     sync.NewCond(lock),
	}, nil
}

// Refresh fetches a new snapshot from the backend and publishes it.
// Concurrent callers share the same in-flight request. The request is not
// aborted if the caller context is canceled.
func (c *Cache) Refresh(ctx context.Context) (domain.WalletInfo, error) {
	res, err, _ := c.group.Do(refreshKey, func() (interface{}, error) {
		c.lock.Lock()
		epoch := c.epoch
		c.lock.Unlock()

		backend, err := c.provider.Backend()
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		info, err := c.cb.Execute(func() (interface{}, error) {
			return backend.GetInfo(ctx)
		})
		if err != nil {
			if circuitbreaker.IsOpen(err) {
				return nil, fmt.Errorf("%w: %s", domain.ErrNetworkUnavailable, err)
			}
			return nil, domain.MapTimeout(err)
		}

		walletInfo, _ := info.(*domain.WalletInfo)
		if walletInfo == nil {
			return nil, fmt.Errorf("%w: empty wallet info", domain.ErrNetworkUnavailable)
		}
		snapshot := walletInfo.Copy()
		if !c.publish(epoch, &snapshot) {
			return nil, fmt.Errorf(
				"%w: cache reset while refreshing", domain.ErrNotConnected,
			)
		}
		return snapshot, nil
	})
	if err != nil {
		return domain.WalletInfo{}, err
	}

	return res.(domain.WalletInfo).Copy(), nil
}

// Current returns the last published snapshot, or the zero-valued one if no
// refresh succeeded yet.
func (c *Cache) Current() domain.WalletInfo {
	snapshot := c.snapshot.Load()
	if snapshot == nil {
		return domain.WalletInfo{}
	}
	return snapshot.Copy()
}

// Trigger schedules a refresh in background and returns immediately.
// Triggers received while a refresh is running result in exactly one more
// refresh once it completes.
func (c *Cache) Trigger() {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.running {
		c.pending = true
		return
	}
	c.running = true

	go c.refreshLoop()
}

// Wait blocks until no triggered refresh is running or scheduled.
func (c *Cache) Wait() {
	c.lock.Lock()
	defer c.lock.Unlock()

	for c.running {
		c.idle.Wait()
	}
}

// Reset drops the current snapshot. Refreshes in flight are discarded.
func (c *Cache) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.epoch++
	c.snapshot.Store(nil)
}

func (c *Cache) publish(epoch uint64, snapshot *domain.WalletInfo) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if epoch != c.epoch {
		return false
	}
	c.snapshot.Store(snapshot)
	return true
}

func (c *Cache) refreshLoop() {
	for {
		if _, err := c.Refresh(context.Background()); err != nil {
			log.WithError(err).Warn("failed to refresh balance")
		}

		c.lock.Lock()
		if !c.pending {
			c.running = false
			c.idle.Broadcast()
			c.lock.Unlock()
			return
		}
		c.pending = false
		c.lock.Unlock()
	}
}
