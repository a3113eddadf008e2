// Package plugins maps configured backend names to their constructors.
package plugins

import (
	"fmt"
	"sort"

	"github.com/kilianp07/chargesim/config"
	"github.com/kilianp07/chargesim/core/store"
)

// StoreFactory builds a store from the store configuration section.
type StoreFactory func(cfg config.StoreConfig) (store.Store, error)

var Stores = map[string]StoreFactory{}

func RegisterStore(name string, f StoreFactory) { Stores[name] = f }

// NewStore builds the store selected by cfg.Backend.
func NewStore(cfg config.StoreConfig) (store.Store, error) {
	f, ok := Stores[cfg.Backend]
	if !ok {
		known := make([]string, 0, len(Stores))
		for name := range Stores {
			known = append(known, name)
		}
		sort.Strings(known)
		return nil, fmt.Errorf("unknown store backend %q (known: %v)", cfg.Backend, known)
	}
	return f(cfg)
}
