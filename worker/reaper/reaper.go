// Package reaper garbage collects expired sessions. Expiry is enforced at
// read time; this loop only keeps the table from growing without bound.
package reaper

import (
	"context"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/strooper/strooper-wallet/core"
)

type Config struct {
	// Interval between sweeps. One minute when zero.
	Interval time.Duration `valid:"optional"`

	// Grace keeps expired sessions around a little longer so a client
	// racing the deadline gets the expiry error instead of a 404.
	Grace time.Duration `valid:"optional"`
}

type Reaper struct {
	sessions core.SessionStore
	logger   *slog.Logger
	cfg      Config
}

func New(sessions core.SessionStore, logger *slog.Logger, cfg Config) *Reaper {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}

	if cfg.Grace <= 0 {
		cfg.Grace = 10 * time.Minute
	}

	return &Reaper{
		sessions: sessions,
		logger:   logger.With("worker", "reaper"),
		cfg:      cfg,
	}
}

func (w *Reaper) Run(ctx context.Context) error {
	w.logger.Info("reaper start")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.cfg.Interval):
			_ = w.run(ctx)
		}
	}
}

func (w *Reaper) run(ctx context.Context) error {
	cutoff := time.Now().Add(-w.cfg.Grace)

	n, err := w.sessions.DeleteExpired(ctx, cutoff)
	if err != nil {
		w.logger.Error("sessions.DeleteExpired", "err", err)
		return err
	}

	if n > 0 {
		w.logger.Info("expired sessions reaped", "count", n)
	}

	return nil
}
