package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{" a , ,b ", []string{"a", "b"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CSV(tc.in), tc.in)
	}
}

func TestPairs(t *testing.T) {
	t.Parallel()

	got := Pairs("Owner@Shop.dz=$2a$10$abc, broken ,=x,b@shop.dz=h2")
	require.Len(t, got, 2)
	assert.Equal(t, "$2a$10$abc", got["owner@shop.dz"])
	assert.Equal(t, "h2", got["b@shop.dz"])
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-number")
	t.Setenv("RESYNC_INTERVAL", "5s")
	t.Setenv("CHECKOUT_RPS", "")
	t.Setenv("STORE_BACKEND", "")

	cfg := Load()
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 5*time.Second, cfg.ResyncInterval)
	assert.Equal(t, 0.5, cfg.CheckoutRPS)
	assert.Equal(t, "gorm", cfg.StoreBackend)
	assert.Equal(t, "products", cfg.ESIndex)
}
