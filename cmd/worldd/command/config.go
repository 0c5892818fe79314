package command

import (
	"github.com/pixil98/go-errors"
)

type Config struct {
	Engine  EngineConfig  `json:"engine"`
	Storage StorageConfig `json:"storage"`
	Nats    NatsConfig    `json:"nats"`
	Api     ApiConfig     `json:"api"`
	Catalog CatalogConfig `json:"catalog"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	el.Add(c.Engine.Validate())
	el.Add(c.Storage.Validate())
	el.Add(c.Nats.Validate())
	el.Add(c.Api.Validate())
	el.Add(c.Catalog.Validate())

	return el.Err()
}
