// Package config defines the structures to configure the fpdlink tool.
package config

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.viam.com/utils"

	"go.viam.com/fpdlink/components/board"
	"go.viam.com/fpdlink/fpdlink"
	"go.viam.com/fpdlink/logging"
)

// A Config describes the bench a profile runs on.
type Config struct {
	Board board.Config `json:"board"`

	// Addresses overrides the strap addresses of the link.
	Addresses *fpdlink.Addresses `json:"addresses,omitempty"`

	// Profiles holds per profile parameter overrides, keyed by profile name.
	Profiles map[string]fpdlink.ParamOverrides `json:"profiles,omitempty"`

	LogConfig []logging.LoggerPatternConfig `json:"log,omitempty"`
	LogFile   string                        `json:"log_file,omitempty"`

	// ConfigFilePath is the path this config was read from, if any.
	ConfigFilePath string `json:"-"`
}

// Default returns the config used when no file is given: a simulated bench with a fake bus for
// id 0 and for every board id a profile selects.
func Default() *Config {
	ids := lo.FilterMap(fpdlink.Profiles(), func(p *fpdlink.Profile, _ int) (int, bool) {
		return p.Defaults.BoardID, p.SelectsBoard
	})
	ids = lo.Uniq(append([]int{0}, ids...))
	return &Config{
		Board: board.Config{
			Buses: lo.Map(ids, func(id, _ int) board.BusConfig {
				return board.BusConfig{ID: id, Name: fmt.Sprintf("bench%d", id), Type: "fake"}
			}),
		},
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	if err := c.Board.Validate("board"); err != nil {
		return err
	}
	if c.Addresses != nil {
		if err := validateAddresses("addresses", *c.Addresses); err != nil {
			return err
		}
	}
	for name, overrides := range c.Profiles {
		path := fmt.Sprintf("profiles.%s", name)
		if _, err := fpdlink.Lookup(name); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
		if err := validateOverrides(path, overrides); err != nil {
			return err
		}
	}
	for idx, lpc := range c.LogConfig {
		path := fmt.Sprintf("log.%d", idx)
		if lpc.Pattern == "" {
			return utils.NewConfigValidationFieldRequiredError(path, "pattern")
		}
		if _, err := logging.LevelFromString(lpc.Level); err != nil {
			return utils.NewConfigValidationError(path, err)
		}
	}
	return nil
}

// LinkAddresses returns the configured addresses, or the defaults.
func (c *Config) LinkAddresses() fpdlink.Addresses {
	if c.Addresses == nil {
		return fpdlink.DefaultAddresses
	}
	return *c.Addresses
}

// Params returns the params a run of the profile uses: its defaults, then the overrides from the
// file, then the given overrides.
func (c *Config) Params(p *fpdlink.Profile, overrides fpdlink.ParamOverrides) fpdlink.Params {
	return c.Profiles[p.Name].Merge(overrides).Apply(p.Defaults)
}

func validateAddresses(path string, a fpdlink.Addresses) error {
	fields := []struct {
		name string
		addr byte
	}{{"ser", a.Ser}, {"des", a.DesAddr}, {"des_alias", a.DesAlias}}
	for _, f := range fields {
		if f.addr == 0 {
			return utils.NewConfigValidationFieldRequiredError(path, f.name)
		}
		if f.addr&0x01 != 0 {
			return utils.NewConfigValidationError(path,
				errors.Errorf("%s address 0x%02x must be an 8-bit address with the R/W bit clear", f.name, f.addr))
		}
	}
	return nil
}

func validateOverrides(path string, o fpdlink.ParamOverrides) error {
	if o.DesPCLK != nil && *o.DesPCLK <= 0 {
		return utils.NewConfigValidationError(path, errors.New("des_pclk_mhz must be positive"))
	}
	if o.SerPCLK != nil && *o.SerPCLK <= 0 {
		return utils.NewConfigValidationError(path, errors.New("ser_pclk_mhz must be positive"))
	}
	if o.BoardID != nil && *o.BoardID < 0 {
		return utils.NewConfigValidationError(path, errors.New("board_id must not be negative"))
	}
	return nil
}
