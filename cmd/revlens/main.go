package main

import (
	"github.com/smallbiznis/revlens/internal/config"
	"github.com/smallbiznis/revlens/internal/migration"
	"github.com/smallbiznis/revlens/internal/observability"
	"github.com/smallbiznis/revlens/internal/server"
	"github.com/smallbiznis/revlens/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		observability.Module,
		db.Module,
		migration.Module,

		// HTTP surface and snapshot engine
		server.Module,
	)
	app.Run()
}
