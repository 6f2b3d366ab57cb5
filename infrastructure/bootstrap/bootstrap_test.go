package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetlog/fleetlog/infrastructure/config"
)

func TestOpenStores_Memory(t *testing.T) {
	stores, err := OpenStores(context.Background(), &config.Config{StorageDriver: config.StorageDriverMemory})

	require.NoError(t, err)
	assert.Nil(t, stores.DB)
	assert.NotNil(t, stores.Users)
	assert.NotNil(t, stores.ChangeRequests)
	assert.NoError(t, stores.Ping(context.Background()))
	assert.NoError(t, stores.Close())
}

func TestOpenDatabase_RequiresURL(t *testing.T) {
	_, err := OpenDatabase(context.Background(), "")

	assert.ErrorIs(t, err, config.ErrMissingDatabaseURL)
}

func TestOpenRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := OpenRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestOpenRedis_InvalidURL(t *testing.T) {
	_, err := OpenRedis(context.Background(), "://nope")

	assert.Error(t, err)
}
