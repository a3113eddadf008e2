package plugins

import (
	"github.com/kilianp07/chargesim/config"
	"github.com/kilianp07/chargesim/core/store"
	infrastore "github.com/kilianp07/chargesim/infra/store"
)

func init() {
	RegisterStore("memory", func(config.StoreConfig) (store.Store, error) {
		return store.NewMemoryStore(), nil
	})
	RegisterStore("sqlite", func(cfg config.StoreConfig) (store.Store, error) {
		s, err := infrastore.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}
