package memory

import (
	"context"
	"errors"
	"sync"

	"staybook/internal/app/uow"
	domainbooking "staybook/internal/domain/booking"
	domainguest "staybook/internal/domain/guest"
)

// ErrFactoryMisconfigured indicates a factory without a store.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

var ErrUnitClosed = errors.New("memory: unit of work already closed")

// Factory hands out units of work over a shared Store.
type Factory struct {
	Store *Store
}

func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Store == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{store: f.Store, readOnly: opts.ReadOnly}, nil
}

// Unit buffers writes until Commit. Reads see committed state only.
type Unit struct {
	store    *Store
	readOnly bool

	mu          sync.Mutex
	ops         []func(*state) error
	afterCommit []func()
	closed      bool
}

func (u *Unit) Properties() domainbooking.PropertyRepository { return propertyRepository{unit: u} }

func (u *Unit) Bookings() domainbooking.Repository { return bookingRepository{unit: u} }

func (u *Unit) Guests() domainguest.Repository { return guestRepository{unit: u} }

func (u *Unit) stage(op func(*state) error) error {
	if u.readOnly {
		return ErrReadOnly
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrUnitClosed
	}
	u.ops = append(u.ops, op)
	return nil
}

// AfterCommit registers fn to run once the unit's writes are applied. It is
// dropped on rollback or a failed commit.
func (u *Unit) AfterCommit(fn func()) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.closed {
		return ErrUnitClosed
	}
	u.afterCommit = append(u.afterCommit, fn)
	return nil
}

func (u *Unit) Commit(ctx context.Context) error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return ErrUnitClosed
	}
	u.closed = true
	ops, hooks := u.ops, u.afterCommit
	u.ops, u.afterCommit = nil, nil
	u.mu.Unlock()

	if err := u.store.apply(ops); err != nil {
		return err
	}
	for _, fn := range hooks {
		fn()
	}
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.closed = true
	u.ops = nil
	u.afterCommit = nil
	return nil
}

var _ uow.UoWFactory = Factory{}
