package main

import (
	"github.com/google/wire"
	"github.com/spf13/viper"
	"github.com/strooper/strooper-wallet/store/db"
	"github.com/strooper/strooper-wallet/store/property"
	"github.com/strooper/strooper-wallet/store/session"
	"github.com/tsenart/nap"
)

var storeSet = wire.NewSet(
	provideDB,
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
