/*
Package app links together all the various components
to construct the editionsd app.
*/
package app

import (
	"context"
	"path/filepath"
	"strings"

	weave "github.com/iov-one/weave-editions"
	"github.com/iov-one/weave-editions/app"
	"github.com/iov-one/weave-editions/errors"
	"github.com/iov-one/weave-editions/orm"
	"github.com/iov-one/weave-editions/store/badgerdb"
	"github.com/iov-one/weave-editions/x"
	"github.com/iov-one/weave-editions/x/cash"
	"github.com/iov-one/weave-editions/x/cron"
	"github.com/iov-one/weave-editions/x/deposit"
	"github.com/iov-one/weave-editions/x/edition"
	"github.com/iov-one/weave-editions/x/events"
	"github.com/iov-one/weave-editions/x/fee"
	"github.com/iov-one/weave-editions/x/payout"
	"github.com/iov-one/weave-editions/x/series"
	"github.com/iov-one/weave-editions/x/sigs"
	"github.com/iov-one/weave-editions/x/transfer"
	"github.com/iov-one/weave-editions/x/utils"
)

// Components holds the domain services shared by the transaction router,
// the scheduled task router and the queries.
type Components struct {
	Outbox    *events.Outbox
	Cash      cash.Controller
	Fees      fee.ScheduleController
	Ledger    *edition.Ledger
	Registry  *series.Registry
	Payouts   *payout.Engine
	Protocol  *transfer.Protocol
	Scheduler *cron.Scheduler
	Ticker    *cron.Ticker
}

// NewComponents wires all services together. Acknowledgment hooks of
// receiving parties are looked up in the given registry, which may be nil.
func NewComponents(hooks *transfer.HookRegistry) *Components {
	if hooks == nil {
		hooks = transfer.NewHookRegistry()
	}
	enc := cron.NewTaskMarshaler()

	c := &Components{
		Outbox:    events.NewOutbox(),
		Cash:      cash.NewController(),
		Scheduler: cron.NewScheduler(enc),
	}
	c.Fees = fee.NewController(c.Outbox)
	c.Ledger = edition.NewLedger(c.Outbox)
	c.Registry = series.NewRegistry(c.Ledger, c.Fees, c.Outbox)
	c.Payouts = payout.NewEngine(c.Registry)
	c.Protocol = transfer.NewProtocol(c.Ledger, c.Registry, c.Payouts, hooks, c.Scheduler)
	c.Ticker = cron.NewTicker(CronStack(c), enc)
	return c
}

// Authenticator returns the typical authentication,
// just using public key signatures
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{})
}

// CronAuthenticator authorizes scheduled tasks with the conditions they
// were scheduled with.
func CronAuthenticator() x.Authenticator {
	return x.ChainAuth(cron.Authenticator{})
}

// Chain returns a chain of decorators, to handle authentication,
// deposits, logging, and recovery
func Chain(authFn x.Authenticator, ctrl cash.Controller) app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewActionTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, a failed message still increments the nonce
		// but returns the attached deposit
		utils.NewSavepoint().OnDeliver(),
		deposit.NewDecorator(authFn, ctrl),
	)
}

// Router returns a router dispatching all messages a user can sign.
func Router(authFn x.Authenticator, c *Components) *app.Router {
	r := app.NewRouter()
	cash.RegisterRoutes(r, authFn, c.Cash)
	sigs.RegisterRoutes(r, authFn)
	deposit.RegisterRoutes(r, authFn)
	fee.RegisterRoutes(r, authFn, c.Fees)
	edition.RegisterRoutes(r, authFn, c.Ledger)
	series.RegisterRoutes(r, authFn, c.Registry)
	transfer.RegisterRoutes(r, authFn, c.Protocol)
	return r
}

// CronStack returns the handler executing scheduled tasks. Only the
// transfer protocol schedules tasks.
func CronStack(c *Components) weave.Handler {
	r := app.NewRouter()
	transfer.RegisterRoutes(r, CronAuthenticator(), c.Protocol)
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
	).WithHandler(r)
}

// QueryRouter returns a default query router, allowing access to "/",
// the buckets and the views of every extension.
func QueryRouter(c *Components) weave.QueryRouter {
	r := weave.NewQueryRouter()
	r.RegisterAll(
		cash.RegisterQuery,
		sigs.RegisterQuery,
		fee.RegisterQuery,
		edition.RegisterQuery,
		series.RegisterQuery,
		payout.RegisterQuery,
		transfer.RegisterQuery,
		cron.RegisterQuery,
		c.Outbox.RegisterQuery,
		orm.RegisterQuery,
	)
	return r
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack(c *Components) weave.Handler {
	authFn := Authenticator()
	return Chain(authFn, c.Cash).WithHandler(Router(authFn, c))
}

// Initializers returns the genesis loaders of every extension.
func Initializers() weave.Initializer {
	return app.ChainInitializers(
		&cash.Initializer{},
		&fee.Initializer{},
		&series.Initializer{},
		&deposit.Initializer{},
		&transfer.Initializer{},
	)
}

// Application constructs a basic ABCI application with
// the given arguments.
func Application(name string, c *Components, kv weave.CommitKVStore, debug bool) app.BaseApp {
	ctx := context.Background()
	store := app.NewStoreApp(name, kv, QueryRouter(c), ctx)
	store.WithInit(Initializers())
	return app.NewBaseApp(store, TxDecoder, Stack(c), c.Ticker, debug)
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named directory.
func CommitKVStore(dbPath string) (*badgerdb.CommitStore, error) {
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}
	// Some external calls accidently add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))
	return badgerdb.NewCommitStore(path)
}
