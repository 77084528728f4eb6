package main

import (
	"context"
	"database/sql"
	"log/slog"

	"lunchsync/internal/config"
	"lunchsync/internal/database"
	"lunchsync/internal/service"
)

type app struct {
	db        *sql.DB
	ledger    *service.Ledger
	publisher *service.EventPublisher
	runner    *service.Runner
}

// newApp connects the optional ledger database and Kafka publisher and builds
// one synchronizer per configured instance.
func newApp(ctx context.Context, cfg *config.Config, requireDB bool) (*app, error) {
	a := &app{}
	if cfg.DatabaseURI != "" || requireDB {
		db, err := database.NewDB(ctx, cfg.DatabaseURI)
		if err != nil {
			return nil, err
		}
		if err := database.InitSchema(db); err != nil {
			database.CloseDB(db)
			return nil, err
		}
		a.db = db
		a.ledger = service.NewLedger(db)
	}

	var observers []service.OrderObserver
	if a.ledger != nil {
		observers = append(observers, a.ledger)
	}
	if len(cfg.KafkaBrokers) > 0 {
		a.publisher = service.NewEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		observers = append(observers, a.publisher)
	}

	var ledger service.RunLedger
	if a.ledger != nil {
		ledger = a.ledger
	}

	reader := service.NewWorkbookReader()
	syncs := make([]*service.WeeklySynchronizer, 0, len(cfg.Instances))
	for _, inst := range cfg.Instances {
		api := service.NewAPIClient(service.APIClientOptions{
			BaseURL:     inst.APIBaseURI,
			Company:     inst.Company,
			AccessToken: inst.AccessToken,
			APISecret:   inst.APISecret,
		})
		syncs = append(syncs, service.NewWeeklySynchronizer(
			inst.Key,
			reader,
			api.Menus(),
			service.NewOrderReconstructor(api.Users(), inst.Company),
			service.NewSyncEngine(api.Orders(), cfg.SyncWorkers, observers...),
			ledger,
		))
	}
	a.runner = service.NewRunner(cfg.Sheets, syncs...)
	return a, nil
}

func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			slog.Error("failed to close kafka writer", "error", err)
		}
	}
	if a.db != nil {
		database.CloseDB(a.db)
	}
}
