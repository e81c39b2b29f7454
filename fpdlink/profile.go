// Package fpdlink brings up TI DS90Ux98x FPD-Link serializer/deserializer pairs. Each supported
// board is a Profile: a fixed sequence of register writes, with a few reads where the sequence
// depends on what the chips report.
package fpdlink

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
)

// Params are the run time knobs of a profile.
type Params struct {
	// DesPCLK is the deserializer pixel clock in MHz.
	DesPCLK float64 `json:"des_pclk_mhz"`
	// SerPCLK is the serializer pixel clock in MHz.
	SerPCLK float64 `json:"ser_pclk_mhz"`
	// PatGen drives the serializer's pattern generator instead of the DP source.
	PatGen bool `json:"patgen"`
	// BoardID selects the bus on profiles that select one.
	BoardID int `json:"board_id"`
}

// ParamOverrides are the Params a user set explicitly.
type ParamOverrides struct {
	DesPCLK *float64 `json:"des_pclk_mhz,omitempty"`
	SerPCLK *float64 `json:"ser_pclk_mhz,omitempty"`
	PatGen  *bool    `json:"patgen,omitempty"`
	BoardID *int     `json:"board_id,omitempty"`
}

// Apply returns p with the overrides set.
func (o ParamOverrides) Apply(p Params) Params {
	if o.DesPCLK != nil {
		p.DesPCLK = *o.DesPCLK
	}
	if o.SerPCLK != nil {
		p.SerPCLK = *o.SerPCLK
	}
	if o.PatGen != nil {
		p.PatGen = *o.PatGen
	}
	if o.BoardID != nil {
		p.BoardID = *o.BoardID
	}
	return p
}

// Merge returns o with every override set in other replacing the one in o.
func (o ParamOverrides) Merge(other ParamOverrides) ParamOverrides {
	if other.DesPCLK != nil {
		o.DesPCLK = other.DesPCLK
	}
	if other.SerPCLK != nil {
		o.SerPCLK = other.SerPCLK
	}
	if other.PatGen != nil {
		o.PatGen = other.PatGen
	}
	if other.BoardID != nil {
		o.BoardID = other.BoardID
	}
	return o
}

// A Profile brings up one board configuration.
type Profile struct {
	Name        string
	Description string
	Defaults    Params
	// SelectsBoard brackets the run with SetID(BoardID) and EndI2C.
	SelectsBoard bool
	// Build returns the steps for the given addresses and params.
	Build func(a Addresses, p Params) ([]Step, error)
}

// Steps returns the profile's steps.
func (p *Profile) Steps(a Addresses, params Params) ([]Step, error) {
	steps, err := p.Build(a, params)
	if err != nil {
		return nil, errors.Wrapf(err, "building profile %s", p.Name)
	}
	return steps, nil
}

// Run performs the profile on the session's board.
func (p *Profile) Run(ctx context.Context, s *Session, params Params) (report *Report, err error) {
	steps, err := p.Steps(s.Addr, params)
	if err != nil {
		return nil, err
	}
	s.Report.Profile = p.Name
	s.Report.Params = params

	if p.SelectsBoard {
		if err := s.Board.SetID(ctx, params.BoardID); err != nil {
			return s.Report, errors.Wrapf(err, "selecting board %d", params.BoardID)
		}
		defer func() {
			err = multierr.Combine(err, errors.Wrap(s.Board.EndI2C(ctx), "ending I2C session"))
		}()
	}

	s.Logger.Infow("running profile", "profile", p.Name, "steps", len(steps),
		"des_pclk_mhz", params.DesPCLK, "ser_pclk_mhz", params.SerPCLK, "patgen", params.PatGen)
	if err := Run(ctx, s, steps); err != nil {
		return s.Report, errors.Wrap(err, p.Name)
	}
	s.Logger.Infow("profile done", "profile", p.Name, "delay", s.Report.Delay)
	return s.Report, nil
}

var (
	profilesMu sync.RWMutex
	profiles   = map[string]*Profile{}
)

// Register makes a profile available by name. It panics on a duplicate name.
func Register(p *Profile) {
	profilesMu.Lock()
	defer profilesMu.Unlock()
	if _, ok := profiles[p.Name]; ok {
		panic(errors.Errorf("profile %q already registered", p.Name))
	}
	profiles[p.Name] = p
}

func sortedNames() []string {
	names := lo.Keys(profiles)
	slices.Sort(names)
	return names
}

// Names returns the registered profile names, sorted.
func Names() []string {
	profilesMu.RLock()
	defer profilesMu.RUnlock()
	return sortedNames()
}

// Profiles returns the registered profiles, sorted by name.
func Profiles() []*Profile {
	profilesMu.RLock()
	defer profilesMu.RUnlock()
	return lo.Map(sortedNames(), func(name string, _ int) *Profile {
		return profiles[name]
	})
}

// Lookup returns the profile registered under name.
func Lookup(name string) (*Profile, error) {
	profilesMu.RLock()
	defer profilesMu.RUnlock()
	p, ok := profiles[name]
	if !ok {
		return nil, errors.Errorf("unknown profile %q, expected one of %s", name, strings.Join(sortedNames(), ", "))
	}
	return p, nil
}
