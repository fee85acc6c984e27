// Package topup keeps the demo faucet liquid. The derived faucet keypair
// rotates hourly, so this loop also warms up each hour's fresh account.
package topup

import (
	"context"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/strooper/strooper-wallet/core"
)

type Config struct {
	// Interval between checks. Five minutes when zero.
	Interval time.Duration `valid:"optional"`
}

type Topup struct {
	fundz  core.FundingService
	logger *slog.Logger
	cfg    Config
}

func New(fundz core.FundingService, logger *slog.Logger, cfg Config) *Topup {
	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		panic(err)
	}

	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}

	return &Topup{
		fundz:  fundz,
		logger: logger.With("worker", "topup"),
		cfg:    cfg,
	}
}

func (w *Topup) Run(ctx context.Context) error {
	w.logger.Info("topup start")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.cfg.Interval):
			if err := w.fundz.EnsureFaucet(ctx); err != nil {
				w.logger.Error("fundz.EnsureFaucet", "err", err)
			}
		}
	}
}
