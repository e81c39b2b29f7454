package board

import (
	"context"
	"slices"
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/fpdlink/components/board/buses"
	"go.viam.com/fpdlink/logging"
)

// A BusConstructor opens the bus described by conf.
type BusConstructor func(ctx context.Context, conf BusConfig, logger logging.Logger) (buses.I2C, error)

var (
	registryMu  sync.RWMutex
	busRegistry = map[string]BusConstructor{}
)

// RegisterBus registers a bus backend under the config type name. Backends call this from init.
// It panics on a duplicate type.
func RegisterBus(typ string, constructor BusConstructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, ok := busRegistry[typ]; ok {
		panic(errors.Errorf("bus type %q already registered", typ))
	}
	busRegistry[typ] = constructor
}

// BusTypes returns the registered bus types, sorted.
func BusTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := lo.Keys(busRegistry)
	slices.Sort(types)
	return types
}

func lookupBus(typ string) (BusConstructor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	constructor, ok := busRegistry[typ]
	return constructor, ok
}
