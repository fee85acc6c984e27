package main

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/strooper/strooper-wallet/worker/reaper"
	"github.com/strooper/strooper-wallet/worker/topup"
)

var workerSet = wire.NewSet(
	provideReaperConfig,
	reaper.New,
	provideTopupConfig,
	topup.New,
)

func provideReaperConfig(v *viper.Viper) reaper.Config {
	return reaper.Config{
		Interval: v.GetDuration("reaper.interval"),
		Grace:    v.GetDuration("reaper.grace"),
	}
}

func provideTopupConfig(v *viper.Viper) topup.Config {
	return topup.Config{
		Interval: v.GetDuration("topup.interval"),
	}
}
