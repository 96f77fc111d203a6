package main

import (
	"net/url"
	"testing"

	"github.com/YusovID/barter-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseURL(t *testing.T) {
	raw := databaseURL(config.Postgres{
		Username: "barter",
		Password: "p@ss/word",
		Host:     "db",
		Port:     "5432",
		Database: "barter",
	}, "schema_migrations")

	u, err := url.Parse(raw)
	require.NoError(t, err)

	password, _ := u.User.Password()
	assert.Equal(t, "p@ss/word", password)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/barter", u.Path)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))
	assert.Equal(t, "schema_migrations", u.Query().Get("x-migrations-table"))
}

func TestIntArg(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		expected int
		wantErr  bool
	}{
		{name: "Negative steps", args: []string{"migrator", "steps", "-1"}, expected: -1},
		{name: "Force version", args: []string{"migrator", "force", "3"}, expected: 3},
		{name: "Missing argument", args: []string{"migrator", "steps"}, wantErr: true},
		{name: "Not a number", args: []string{"migrator", "force", "x"}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			n, err := intArg(tc.args)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, n)
		})
	}
}
