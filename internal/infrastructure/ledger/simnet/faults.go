package simnet

import (
	"context"
	"sync"
)

// Method names used as call counter keys.
const (
	MethodConnect             = "Connect"
	MethodDisconnect          = "Disconnect"
	MethodSync                = "Sync"
	MethodGetInfo             = "GetInfo"
	MethodListPayments        = "ListPayments"
	MethodPrepareSend         = "PrepareSendPayment"
	MethodSend                = "SendPayment"
	MethodPrepareReceive      = "PrepareReceivePayment"
	MethodReceive             = "ReceivePayment"
	MethodAddEventListener    = "AddEventListener"
	MethodRemoveEventListener = "RemoveEventListener"
	MethodRefund              = "Refund"
)

type faults struct {
	lock       *sync.RWMutex
	connectErr error
	sendErr    error
	syncErr    error
	getInfoErr error
	getInfo    chan struct{}
}

func newFaults() *faults {
	return &faults{lock: &sync.RWMutex{}}
}

func (f *faults) connectError() error {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.connectErr
}

func (f *faults) sendError() error {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.sendErr
}

func (f *faults) syncError() error {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.syncErr
}

func (f *faults) getInfoError() error {
	f.lock.RLock()
	defer f.lock.RUnlock()
	return f.getInfoErr
}

func (f *faults) waitGetInfo(ctx context.Context) error {
	f.lock.RLock()
	gate := f.getInfo
	f.lock.RUnlock()

	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FailConnect makes every following Connect fail with err. A nil err
// restores the normal behavior.
func (l *Ledger) FailConnect(err error) {
	l.faults.lock.Lock()
	defer l.faults.lock.Unlock()
	l.faults.connectErr = err
}

// FailSend makes every following SendPayment fail with err.
func (l *Ledger) FailSend(err error) {
	l.faults.lock.Lock()
	defer l.faults.lock.Unlock()
	l.faults.sendErr = err
}

// FailSync makes every following Sync fail with err.
func (l *Ledger) FailSync(err error) {
	l.faults.lock.Lock()
	defer l.faults.lock.Unlock()
	l.faults.syncErr = err
}

// FailGetInfo makes every following GetInfo fail with err.
func (l *Ledger) FailGetInfo(err error) {
	l.faults.lock.Lock()
	defer l.faults.lock.Unlock()
	l.faults.getInfoErr = err
}

// BlockGetInfo makes GetInfo wait until the returned function is called or
// the call context is done.
func (l *Ledger) BlockGetInfo() (release func()) {
	gate := make(chan struct{})

	l.faults.lock.Lock()
	l.faults.getInfo = gate
	l.faults.lock.Unlock()

	once := &sync.Once{}
	return func() {
		once.Do(func() {
			l.faults.lock.Lock()
			if l.faults.getInfo == gate {
				l.faults.getInfo = nil
			}
			l.faults.lock.Unlock()
			close(gate)
		})
	}
}

type counters struct {
	lock  *sync.Mutex
	calls map[string]int
}

func newCounters() *counters {
	return &counters{lock: &sync.Mutex{}, calls: make(map[string]int)}
}

func (c *counters) inc(method string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.calls[method]++
}

// Calls returns how many times the given method was called.
func (l *Ledger) Calls(method string) int {
	l.counters.lock.Lock()
	defer l.counters.lock.Unlock()
	return l.counters.calls[method]
}

// ResetCalls zeroes every call counter.
func (l *Ledger) ResetCalls() {
	l.counters.lock.Lock()
	defer l.counters.lock.Unlock()
	l.counters.calls = make(map[string]int)
}
