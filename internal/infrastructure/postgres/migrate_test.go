package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPgx5URL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@db:5432/inv?sslmode=disable":   "pgx5://u:p@db:5432/inv?sslmode=disable",
		"postgresql://u:p@db:5432/inv?sslmode=require": "pgx5://u:p@db:5432/inv?sslmode=require",
		"pgx5://ya/convertido":                         "pgx5://ya/convertido",
	}
	for in, want := range cases {
		assert.Equal(t, want, pgx5URL(in), in)
	}
}

func TestLimitArg(t *testing.T) {
	assert.Nil(t, limitArg(0))
	assert.Nil(t, limitArg(-1))
	assert.Equal(t, 20, limitArg(20))
	assert.Equal(t, 0, offsetArg(-5))
}

func TestMigracionesEmbebidas(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	assert.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_init_schema.up.sql")
	assert.Contains(t, names, "000001_init_schema.down.sql")
}
