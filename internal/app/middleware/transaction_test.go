package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homestay/internal/app/commands"
	"homestay/internal/app/uow"
	domainbooking "homestay/internal/domain/booking"
	domainlistings "homestay/internal/domain/listings"
	domainreviews "homestay/internal/domain/reviews"
	domainuser "homestay/internal/domain/user"
)

type sessionKey struct{}

type sessionUnit struct {
	injected   bool
	committed  bool
	rolledBack bool
}

func (u *sessionUnit) Listings() domainlistings.Repository { return nil }
func (u *sessionUnit) Bookings() domainbooking.Repository  { return nil }
func (u *sessionUnit) Reviews() domainreviews.Repository   { return nil }
func (u *sessionUnit) Users() domainuser.Repository        { return nil }

func (u *sessionUnit) Commit(context.Context) error {
	u.committed = true
	return nil
}

func (u *sessionUnit) Rollback(context.Context) error {
	u.rolledBack = true
	return nil
}

func (u *sessionUnit) InjectContext(ctx context.Context) context.Context {
	u.injected = true
	return context.WithValue(ctx, sessionKey{}, u)
}

type sessionFactory struct {
	unit *sessionUnit
}

func (f *sessionFactory) Begin(context.Context, uow.TxOptions) (uow.UnitOfWork, error) {
	return f.unit, nil
}

type sessionAwareHandler struct {
	sawSession bool
	sawUnit    bool
	err        error
}

func (h *sessionAwareHandler) Handle(ctx context.Context, _ pingCommand) (*pingResult, error) {
	h.sawSession = ctx.Value(sessionKey{}) != nil
	_, h.sawUnit = uow.FromContext(ctx)
	if h.err != nil {
		return nil, h.err
	}
	return &pingResult{Value: 1}, nil
}

func newTxPipeline(handler *sessionAwareHandler, factory uow.Factory) commands.Bus {
	base := commands.NewInMemoryBus()
	commands.RegisterHandler(base, pingCommand{}.Key(), handler)
	return ChainCommands(base, Transaction(factory, nil))
}

func TestTransactionInjectsSessionContext(t *testing.T) {
	unit := &sessionUnit{}
	handler := &sessionAwareHandler{}
	bus := newTxPipeline(handler, &sessionFactory{unit: unit})

	_, err := commands.Dispatch[pingCommand, *pingResult](context.Background(), bus, pingCommand{})
	require.NoError(t, err)

	assert.True(t, unit.injected, "session injection must run before the handler")
	assert.True(t, handler.sawSession, "handler must execute under the session context")
	assert.True(t, handler.sawUnit)
	assert.True(t, unit.committed)
	assert.False(t, unit.rolledBack)
}

func TestTransactionRollsBackOnHandlerError(t *testing.T) {
	unit := &sessionUnit{}
	handler := &sessionAwareHandler{err: errors.New("boom")}
	bus := newTxPipeline(handler, &sessionFactory{unit: unit})

	_, err := commands.Dispatch[pingCommand, *pingResult](context.Background(), bus, pingCommand{})
	require.Error(t, err)

	assert.True(t, unit.injected)
	assert.True(t, unit.rolledBack)
	assert.False(t, unit.committed)
}

func TestBindContextWithoutInjector(t *testing.T) {
	store := struct{ uow.UnitOfWork }{}
	ctx := uow.BindContext(context.Background(), store)

	got, ok := uow.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, store, got)
}
