package main

import (
	"context"
	"log"
	"os"

	"github.com/cpgs-hub/backend/core"
	"github.com/cpgs-hub/backend/core/identity"
	"github.com/cpgs-hub/backend/storage/database"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()
	conf.Database.Migrate = false // schema changes only through `admin migrate`

	// set up DB
	ctx, cancel := context.WithTimeout(context.Background(), conf.Database.ConnectTimeout)
	store, err := database.Open(ctx, conf)
	cancel()
	errAndDie(err)

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	identity.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		usrSvc:  identity.NewService(store.Identities, validate),
		migrate: store.Migrate,
		out:     os.Stdout,
	}
	err = cli.run(os.Args)

	if cerr := store.Close(context.Background()); cerr != nil {
		logger.Printf("closing store: %v", cerr)
	}
	if err != nil {
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
