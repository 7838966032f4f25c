package uow

import (
	"context"

	domainbooking "staybook/internal/domain/booking"
	domainguest "staybook/internal/domain/guest"
)

// UnitOfWork groups the repositories touched by one command behind a single
// commit/rollback boundary.
type UnitOfWork interface {
	Properties() domainbooking.PropertyRepository
	Bookings() domainbooking.Repository
	Guests() domainguest.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

type TxOptions struct {
	ReadOnly bool
}

// Run executes fn inside the unit of work already carried by ctx, or inside a
// new one begun from factory and committed when fn succeeds.
func Run(ctx context.Context, factory UoWFactory, opts TxOptions, fn func(ctx context.Context, unit UnitOfWork) error) error {
	if unit, ok := FromContext(ctx); ok {
		return fn(ctx, unit)
	}
	if factory == nil {
		return ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return err
	}
	execCtx := ContextWithUnitOfWork(InjectContext(ctx, unit), unit)
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(execCtx)
		}
	}()
	if err := fn(execCtx, unit); err != nil {
		return err
	}
	if err := unit.Commit(execCtx); err != nil {
		return err
	}
	committed = true
	return nil
}

// InjectContext lets a unit attach driver state (a Mongo session) to ctx.
func InjectContext(ctx context.Context, unit UnitOfWork) context.Context {
	if injector, ok := unit.(interface {
		InjectContext(context.Context) context.Context
	}); ok {
		return injector.InjectContext(ctx)
	}
	return ctx
}
