package main

import (
	"context"
	"log"
	"os"

	"github.com/plangrid/matcast/core"
	"github.com/plangrid/matcast/core/inventory"
	"github.com/plangrid/matcast/storage/mongodb"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	if conf.Database.URI == "" {
		logger.Fatal("databaseUri is not configured")
	}

	ctx := context.Background()
	db, err := mongodb.Open(ctx, conf)
	errAndDie(err)
	defer func() {
		if err = db.Close(ctx); err != nil {
			logger.Printf("closing database: %v", err)
		}
	}()

	cli := commandLine{
		db:      db,
		usrRepo: mongodb.NewUserRepository(db),
		invSvc:  inventory.NewService(mongodb.NewInventoryRepository(db)),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
