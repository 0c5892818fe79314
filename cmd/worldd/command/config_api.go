package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

type ApiConfig struct {
	Port uint16 `json:"port"`
}

func (c *ApiConfig) Validate() error {
	el := errors.NewErrorList()

	if c.Port == 0 {
		el.Add(fmt.Errorf("api: port must be set to a positive integer"))
	}

	return el.Err()
}
