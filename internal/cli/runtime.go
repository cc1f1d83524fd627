package cli

import (
	"context"
	"database/sql"

	"phrasebook/internal/cache"
	"phrasebook/internal/config"
	"phrasebook/internal/db"
	"phrasebook/internal/logger"
	"phrasebook/internal/repository"
	"phrasebook/internal/service"
)

// runtime is one engine session: the service plus the connection behind
// its remote store.
type runtime struct {
	service service.KeywordService
	conn    *sql.DB
}

func openRuntime(ctx context.Context, cfg config.Config) *runtime {
	remote, conn := openRemote(ctx, cfg)
	store := cache.NewFileStore(cfg.CachePath)
	return &runtime{
		service: service.NewKeywordService(remote, store),
		conn:    conn,
	}
}

// Close waits for background remote writes before closing the connection.
func (rt *runtime) Close() {
	rt.service.Wait()
	if rt.conn != nil {
		if err := rt.conn.Close(); err != nil {
			logger.Warn("close remote store", "module", "cli", "action", "close", "resource", "remote", "result", "failed", "error", err)
		}
	}
}

// openRemote never fails: a remote store that cannot be opened leaves the
// engine on the local cache.
func openRemote(ctx context.Context, cfg config.Config) (repository.KeywordRepository, *sql.DB) {
	var (
		conn    *sql.DB
		dialect db.Dialect
		err     error
	)
	switch cfg.Remote.Driver {
	case config.DriverNone:
		logger.Info("remote store disabled", "module", "cli", "action", "open", "resource", "remote", "result", "ok")
		return nil, nil
	case config.DriverPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, cfg.Remote.Timeout)
		conn, err = db.OpenPostgres(connectCtx, cfg.Remote.DSN)
		cancel()
		dialect = db.DialectPostgres
	default:
		conn, err = db.Open(cfg.SQLitePath())
		dialect = db.DialectSQLite
	}
	if err != nil {
		logger.Warn("remote store unavailable, using local cache only", "module", "cli", "action", "open", "resource", "remote", "result", "failed", "driver", cfg.Remote.Driver, "error", err)
		return nil, nil
	}

	logger.Info("remote store opened", "module", "cli", "action", "open", "resource", "remote", "result", "ok", "driver", dialect.String())
	repo := repository.NewKeywordRepository(conn, dialect, cfg.Remote.UserEmail)
	return repository.NewLimitedRepository(repo, cfg.Remote.QPS, cfg.Remote.Timeout), conn
}
