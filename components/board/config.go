package board

import (
	"fmt"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// BusConfig enumerates a specific I2C bus. ID is the number bring-up profiles pass to SetID.
type BusConfig struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Type string `json:"type" jsonschema:"enum=linux,enum=mcp2221,enum=fake"`

	// Bus is the i2c-dev bus name or number for linux buses, e.g. "1" or "/dev/i2c-1".
	Bus string `json:"bus,omitempty"`
	// Index selects among several attached USB adapters.
	Index   int    `json:"index,omitempty"`
	SpeedHz uint32 `json:"speed_hz,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *BusConfig) Validate(path string) error {
	if conf.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if conf.Type == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "type")
	}
	if conf.Type == "linux" && conf.Bus == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "bus")
	}
	if _, ok := lookupBus(conf.Type); !ok {
		return utils.NewConfigValidationError(path, errors.Errorf("unknown bus type %q", conf.Type))
	}
	if conf.ID < 0 {
		return utils.NewConfigValidationError(path, errors.New("id must not be negative"))
	}
	return nil
}

// Config describes every bus the board can select and the one selected before any SetID.
type Config struct {
	Buses     []BusConfig `json:"buses"`
	DefaultID int         `json:"default_id,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) error {
	if len(conf.Buses) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "buses")
	}
	seen := make(map[int]struct{}, len(conf.Buses))
	foundDefault := false
	for idx := range conf.Buses {
		bus := &conf.Buses[idx]
		if err := bus.Validate(fmt.Sprintf("%s.%s.%d", path, "buses", idx)); err != nil {
			return err
		}
		if _, ok := seen[bus.ID]; ok {
			return utils.NewConfigValidationError(path, errors.Errorf("duplicate bus id %d", bus.ID))
		}
		seen[bus.ID] = struct{}{}
		if bus.ID == conf.DefaultID {
			foundDefault = true
		}
	}
	if !foundDefault {
		return utils.NewConfigValidationError(path, errors.Errorf("default_id %d does not name a bus", conf.DefaultID))
	}
	return nil
}
