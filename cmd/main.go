// Package main is the entry point for the pallet-service application.
//
// @title           Pallet Service API
// @version         1.0.0
// @description     API for planning how the products of an order are loaded onto pallets and into a truck.
//
//	Plans are edited interactively, saved in the background and submitted to the backend as change sets.
//
// @termsOfService  http://swagger.io/terms/
//
// @contact.name   API Support
// @contact.email  support@example.com
// @contact.url    https://github.com/guttosm/pallet-service
//
// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT
//
// @host      localhost:8080
// @BasePath  /
//
// @tag.name        Plans
// @tag.description Planning sessions and allocation operations
//
// @tag.name        Pool
// @tag.description Pool ordering and consolidation
//
// @tag.name        Products
// @tag.description Products of a plan
//
// @tag.name        Packages
// @tag.description Packages, their products and pallets
//
// @tag.name        Pallets
// @tag.description Pallet template catalogue
//
// @tag.name        Health
// @tag.description Health check endpoints
package main

import (
	"github.com/rs/zerolog/log"

	_ "github.com/guttosm/pallet-service/docs" // swagger docs

	"github.com/guttosm/pallet-service/config"
	"github.com/guttosm/pallet-service/internal/app"
)

func main() {
	cfg := config.Load()

	application := app.InitializeApp(cfg)
	server := app.NewServer(application.Router, cfg.Server.Port,
		// exports skip the request timeout and are bounded by the write deadline
		app.WithWriteTimeout(2*cfg.Server.RequestTimeout),
		app.WithShutdownHook(application.Shutdown),
	)

	if err := server.Run(); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}
