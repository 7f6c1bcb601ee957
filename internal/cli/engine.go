package cli

import (
	"fmt"
	"log/slog"

	"github.com/roach88/motion/internal/engine"
	"github.com/roach88/motion/internal/host"
	"github.com/roach88/motion/internal/store"
)

// newEngine builds an engine from the loaded configuration. When a journal
// is configured it is opened (and created if missing) and the returned
// cleanup closes it.
func (o *RootOptions) newEngine(doc host.Document, frames host.FrameSource, logger *slog.Logger, notifier host.Notifier, extra ...engine.Option) (*engine.Engine, func(), error) {
	cfg := o.Config.Engine
	opts := []engine.Option{
		engine.WithLogger(logger),
		engine.WithThrottle(cfg.ThrottleInterval.Std()),
	}
	if cfg.MaxCascadeSteps > 0 {
		opts = append(opts, engine.WithMaxCascadeSteps(cfg.MaxCascadeSteps))
	}
	if notifier != nil {
		opts = append(opts, engine.WithNotifier(notifier))
	}

	cleanup := func() {}
	if path := o.Config.Journal.Path; path != "" {
		st, err := store.Open(path)
		if err != nil {
			return nil, cleanup, fmt.Errorf("open journal: %w", err)
		}
		logger.Debug("journal opened", "path", path)
		opts = append(opts, engine.WithJournal(st))
		cleanup = func() {
			if err := st.Close(); err != nil {
				logger.Warn("journal close failed", "error", err)
			}
		}
	}

	opts = append(opts, extra...)
	return engine.New(doc, frames, opts...), cleanup, nil
}
