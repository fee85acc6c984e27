package main

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/network"
	"github.com/strooper/strooper-wallet/service/funding"
	"github.com/strooper/strooper-wallet/service/horizon"
	"github.com/strooper/strooper-wallet/service/soroban"
)

var serviceSet = wire.NewSet(
	provideHorizonClient,
	provideHorizonConfig,
	horizon.New,
	provideSorobanConfig,
	soroban.New,
	provideFundingConfig,
	funding.New,
)

func networkPassphrase(v *viper.Viper) string {
	v.SetDefault("stellar.network_passphrase", network.TestNetworkPassphrase)
	return v.GetString("stellar.network_passphrase")
}

func provideHorizonClient(v *viper.Viper) *horizonclient.Client {
	v.SetDefault("stellar.horizon_url", "https://horizon-testnet.stellar.org")

	return &horizonclient.Client{
		HorizonURL: v.GetString("stellar.horizon_url"),
	}
}

func provideHorizonConfig(v *viper.Viper) horizon.Config {
	return horizon.Config{
		NetworkPassphrase: networkPassphrase(v),
	}
}

func provideSorobanConfig(v *viper.Viper) soroban.Config {
	v.SetDefault("stellar.rpc_url", "https://soroban-testnet.stellar.org")

	return soroban.Config{
		RPCURL:      v.GetString("stellar.rpc_url"),
		WaitTimeout: v.GetDuration("stellar.rpc_wait_timeout"),
	}
}

func provideFundingConfig(v *viper.Viper) funding.Config {
	return funding.Config{
		NetworkPassphrase: networkPassphrase(v),
		FaucetSeed:        v.GetString("faucet.seed"),
		FundAmount:        v.GetInt64("faucet.fund_amount"),
	}
}
