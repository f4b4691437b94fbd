package middleware

import (
	"context"

	"homestay/internal/app/commands"
	"homestay/internal/app/uow"
)

// TxOptionsProvider lets callers vary transaction options per command.
type TxOptionsProvider func(cmd commands.Command) uow.TxOptions

// Transaction opens a unit of work around every dispatched command, commits on
// success and rolls back on any error so no command ever half-applies.
func Transaction(factory uow.Factory, optsProvider TxOptionsProvider) CommandMiddleware {
	if factory == nil {
		panic("middleware: uow factory required")
	}
	return func(next commands.Bus) commands.Bus {
		nextFn := wrapCommand(next)
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			opts := uow.TxOptions{}
			if optsProvider != nil {
				opts = optsProvider(cmd)
			}
			unit, err := factory.Begin(ctx, opts)
			if err != nil {
				return nil, err
			}
			execCtx := uow.BindContext(ctx, unit)
			committed := false
			defer func() {
				if !committed {
					_ = unit.Rollback(execCtx)
				}
			}()

			res, err := nextFn(execCtx, cmd)
			if err != nil {
				return nil, err
			}
			if err := unit.Commit(execCtx); err != nil {
				return nil, err
			}
			committed = true
			return res, nil
		})
	}
}
