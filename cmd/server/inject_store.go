package main

import (
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"github.com/strooper/strooper-wallet/store/db"
	"github.com/strooper/strooper-wallet/store/property"
	"github.com/strooper/strooper-wallet/store/session"
	"github.com/strooper/strooper-wallet/store/signer"
	"github.com/strooper/strooper-wallet/store/user"
	"github.com/strooper/strooper-wallet/store/wallet"
	"github.com/strooper/strooper-wallet/vault"
	"github.com/tsenart/nap"
)

var storeSet = wire.NewSet(
	provideDB,
	provideRedis,
	provideVaultStorage,
	vault.New,
	user.New,
	wallet.New,
	signer.New,
	session.New,
	property.New,
)

func provideDB(v *viper.Viper) (*nap.DB, func(), error) {
	v.SetDefault("db.driver", "postgres")

	driver := v.GetString("db.driver")
	dsn := v.GetString("db.dsn")

	for _, replica := range v.GetStringSlice("db.replicas") {
		dsn += ";" + replica
	}

	conn, err := nap.Open(driver, dsn)
	if err != nil {
		return nil, nil, err
	}

	if err := db.Migrate(conn.Master()); err != nil {
		return nil, nil, err
	}

	return conn, func() { _ = conn.Close() }, nil
}

func provideRedis(v *viper.Viper) (*redis.Client, func(), error) {
	client := redis.NewClient(&redis.Options{
		Addr:     v.GetString("redis.addr"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	})

	return client, func() { _ = client.Close() }, nil
}

func provideVaultStorage(client *redis.Client) vault.Storage {
	return vault.NewRedisStorage(client)
}
