package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func TestOpenMigratesSchema(t *testing.T) {
	ctx := context.Background()

	d, err := Open(ctx, "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	for _, table := range []string{"users", "identities"} {
		var name string
		err := d.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = $1`, table,
		).Scan(&name)
		require.NoError(t, err, table)
	}

	// second run is a no-op
	require.NoError(t, Migrate(ctx, d.DB))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "nope", "")
	require.Error(t, err)
}
