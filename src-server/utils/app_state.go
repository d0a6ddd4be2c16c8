package utils

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"sync"
	"time"

	"eventboard/src-server/model"
	"eventboard/src-server/nonce"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
)

type AppState struct {
	Config *Config
	RawDB  *sql.DB
	BunDB  *bun.DB
	// natural language dates on the admin form
	When *when.Parser
	// anti-forgery tokens for the filter endpoint and the admin forms
	Nonce *nonce.Issuer

	MetricChans *Metric

	AppCloseSignalChan chan os.Signal

	gracefulShutdownMu    sync.Mutex
	gracefulShutdownChans []*chan struct{}
}

func NewAppState() *AppState {
	cfg := NewConfig()

	rawDB, err := sql.Open(sqliteshim.ShimName, cfg.GetDBPath()+"?mode=rwc")
	if err != nil {
		slog.Error("cannot open sqlite database", "error", err)
		os.Exit(1)
	}
	rawDB.SetMaxIdleConns(8)

	bunDB := bun.NewDB(rawDB, sqlitedialect.New())
	bunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))

	return NewAppStateWithDB(cfg, bunDB)
}

// NewAppStateWithDB wires everything but the database, which is opened by
// the caller.
func NewAppStateWithDB(cfg *Config, bunDB *bun.DB) *AppState {
	as := &AppState{
		Config:             cfg,
		RawDB:              bunDB.DB,
		BunDB:              bunDB,
		Nonce:              nonce.NewIssuer(cfg.GetNonceSecret(), cfg.GetNonceExpire()),
		MetricChans:        NewMetric(),
		AppCloseSignalChan: make(chan os.Signal, 1),
	}

	// date parser
	as.When = when.New(nil)
	as.When.Add(en.All...)
	as.When.Add(common.All...)

	return as
}

// Now is the current moment in the configured timezone.
func (as *AppState) Now() time.Time {
	return time.Now().In(as.Config.GetLocation())
}

// CreateGracefulShutdownChan returns a channel that is closed once the app
// starts shutting down.
func (as *AppState) CreateGracefulShutdownChan() *chan struct{} {
	as.gracefulShutdownMu.Lock()
	defer as.gracefulShutdownMu.Unlock()
	ch := make(chan struct{})
	as.gracefulShutdownChans = append(as.gracefulShutdownChans, &ch)
	return &ch
}

func (as *AppState) GracefulShutdown() {
	as.gracefulShutdownMu.Lock()
	for _, ch := range as.gracefulShutdownChans {
		close(*ch)
	}
	as.gracefulShutdownChans = nil
	as.gracefulShutdownMu.Unlock()

	if err := as.BunDB.Close(); err != nil {
		slog.Error("can't close database", "error", err)
	}
}

// Creates the event table if it doesn't exist yet.
func (as *AppState) EnsureSchema(ctx context.Context) error {
	return model.CreateSchema(ctx, as.BunDB)
}
