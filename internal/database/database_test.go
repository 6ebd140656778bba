package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xelth-com/huissierpro/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "db", Port: "5432", Username: "u", Password: "p", Database: "huissier"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=huissier sslmode=disable", DSN(cfg))

	cfg.URL = "postgres://u:p@db/huissier"
	assert.Equal(t, "postgres://u:p@db/huissier", DSN(cfg))
}

func TestIsPortInUse_FreePort(t *testing.T) {
	// Port 1 is privileged and never bound in test environments.
	assert.False(t, isPortInUse(1))
}
