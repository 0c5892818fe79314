package command

import (
	"fmt"

	"github.com/pixil98/go-service"

	"colonyworld/internal/api"
	"colonyworld/internal/messaging"
	"colonyworld/internal/world"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Create the nats server
	natsServer, err := cfg.Nats.BuildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}

	// Create the event catalog
	cat, err := cfg.Catalog.BuildCatalog()
	if err != nil {
		return nil, fmt.Errorf("creating event catalog: %w", err)
	}

	// Create the durable store (nil means memory-only)
	store, err := cfg.Storage.BuildStore()
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	engineCfg, err := cfg.Engine.BuildConfig()
	if err != nil {
		return nil, fmt.Errorf("building engine config: %w", err)
	}

	announcer := messaging.NewWorldAnnouncer(natsServer, cfg.Catalog.BuildLocale())

	opts := []world.EngineOpt{world.WithAnnouncer(announcer)}
	if store != nil {
		opts = append(opts, world.WithStore(store))
	}
	engine := world.NewEngine(engineCfg, cat, opts...)

	// Create a worker list
	return service.WorkerList{
		"nats": natsServer,
		"api":  api.NewServer(cfg.Api.Port, engine),
	}, nil
}
