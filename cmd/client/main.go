package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/vidtube/internal/client/cli"
	"github.com/dmitrijs2005/vidtube/internal/client/client"
	"github.com/dmitrijs2005/vidtube/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	db, store, err := client.OpenSessionStore(ctx, cfg.SessionDB)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	api := client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout, store)
	app := cli.NewApp(cfg, api, os.Stdin, os.Stdout)

	app.Run(ctx)

}
