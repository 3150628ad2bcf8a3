package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/tooldexapp/tooldex-server/internal/config"
	"github.com/tooldexapp/tooldex-server/internal/logger"
	"github.com/tooldexapp/tooldex-server/internal/store"
	"github.com/tooldexapp/tooldex-server/internal/store/eventlog"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := cfg.DatabasePath()
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// EventLogHandle wraps the analytics event log with shutdown capability.
type EventLogHandle struct {
	*eventlog.Store
}

// Shutdown implements do.Shutdownable.
func (h *EventLogHandle) Shutdown() error {
	return h.Close()
}

// ProvideEventLog provides the SQLite analytics event log.
func ProvideEventLog(i do.Injector) (*EventLogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	events, err := eventlog.Open(cfg.EventLogPath(), log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Event log initialized", "path", cfg.EventLogPath())

	return &EventLogHandle{Store: events}, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
