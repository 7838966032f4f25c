package middleware

import (
	"context"

	"staybook/internal/app/commands"
	"staybook/internal/app/uow"
)

// UnitOwner is implemented by commands whose handlers open their own units
// of work so a per-property lock stays held until commit.
type UnitOwner interface {
	OwnsUnitOfWork() bool
}

type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// Transaction runs a command inside a unit of work that is committed only
// when the handler succeeds. Commands that own their unit pass straight
// through.
func Transaction(factory uow.UoWFactory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if owner, ok := cmd.(UnitOwner); ok && owner.OwnsUnitOfWork() {
				return next.Dispatch(ctx, cmd)
			}
			opts := uow.TxOptions{}
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			var res any
			err := uow.Run(ctx, factory, opts, func(ctx context.Context, _ uow.UnitOfWork) error {
				var err error
				res, err = next.Dispatch(ctx, cmd)
				return err
			})
			if err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
