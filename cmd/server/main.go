package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/dmitrijs2005/userkeeper/internal/server"
	"github.com/dmitrijs2005/userkeeper/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("%v", err)
	}
}
