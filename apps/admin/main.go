package main

import (
	"log"
	"os"

	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/core"
	kvrepos "github.com/phamthikhanhhuyen281-commits/webthigiaoduc/storage/kv"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/storage/localstore"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/storage/pgstore"
	"github.com/phamthikhanhhuyen281-commits/webthigiaoduc/storage/redisstore"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	store, err := openStore(conf)
	errAndDie(err)

	// start CLI
	cli := commandLine{
		usrRepo: kvrepos.NewUserRepository(store),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func openStore(conf *core.Config) (core.Store, error) {
	switch conf.StoreBackend {
	case "postgres":
		return pgstore.Open(conf)
	case "redis":
		return redisstore.Open(conf.RedisAddr)
	default:
		return localstore.New(conf.DataDir)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
