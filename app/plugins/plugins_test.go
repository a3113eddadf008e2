package plugins

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargesim/config"
	"github.com/kilianp07/chargesim/core/store"
)

func TestNewStoreBuiltins(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.StoreConfig
	}{
		{"memory", config.StoreConfig{Backend: "memory"}},
		{"sqlite", config.StoreConfig{Backend: "sqlite", Path: "file:plugins_test?mode=memory&cache=shared"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, err := NewStore(tc.cfg)
			require.NoError(t, err)
			t.Cleanup(func() { _ = st.Close() })

			p, err := st.CreateParameters(context.Background(), store.InputParameters{StationCount: 2})
			require.NoError(t, err)
			got, err := st.GetParameters(context.Background(), p.ID)
			require.NoError(t, err)
			assert.Equal(t, 2, got.StationCount)
		})
	}
}

func TestNewStoreUnknown(t *testing.T) {
	_, err := NewStore(config.StoreConfig{Backend: "redis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory")
	assert.Contains(t, err.Error(), "sqlite")
}
