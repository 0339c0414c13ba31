//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"us-daily-bars/internal/app"
	"us-daily-bars/internal/provider"
)

// InitializeApp builds the pipeline App via Wire. The returned cleanup closes
// the database connection; callers run it on every exit path.
func InitializeApp() (*app.App, func(), error) {
	wire.Build(
		app.ProvideConfig,
		app.ProvideLogger,
		app.ProvideSnapshotSaver,
		app.ProvideStore,
		app.ProvidePolygonProvider,
		wire.Bind(new(provider.DataProvider), new(*provider.PolygonProvider)),
		wire.Struct(new(app.App), "Config", "Provider", "Store", "Saver", "Log"),
	)
	return nil, nil, nil
}
