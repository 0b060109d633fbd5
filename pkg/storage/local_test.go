package storage_test

import (
	"context"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/pkg/storage"
)

func TestLocalDisk_PutReadMove(t *testing.T) {
	ctx := context.Background()
	d := storage.NewLocalDisk(t.TempDir(), "http://files.local/")

	require.NoError(t, d.Put(ctx, "uploaded/products.csv", []byte("name,price\nLamp,10\n")))
	assert.True(t, d.Exists(ctx, "uploaded/products.csv"))

	require.NoError(t, d.Move(ctx, "uploaded/products.csv", "parsed/products.csv"))
	assert.False(t, d.Exists(ctx, "uploaded/products.csv"))

	rc, err := d.GetStream(ctx, "parsed/products.csv")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "name,price\nLamp,10\n", string(body))
}

func TestLocalDisk_CopyKeepsSource(t *testing.T) {
	ctx := context.Background()
	d := storage.NewLocalDisk(t.TempDir(), "http://files.local")

	require.NoError(t, d.Put(ctx, "a.csv", []byte("x")))
	require.NoError(t, d.Copy(ctx, "a.csv", "b/a.csv"))
	assert.True(t, d.Exists(ctx, "a.csv"))
	assert.True(t, d.Exists(ctx, "b/a.csv"))
}

func TestLocalDisk_DeleteMissingIsNoop(t *testing.T) {
	d := storage.NewLocalDisk(t.TempDir(), "")
	assert.NoError(t, d.Delete(context.Background(), "nope.csv"))
}

func TestLocalDisk_PresignPut(t *testing.T) {
	d := storage.NewLocalDisk(t.TempDir(), "http://files.local")

	raw, err := d.PresignPut(context.Background(), "uploaded/p.csv", "text/csv", 5*time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "http://files.local/uploaded/p.csv?"))

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "text/csv", u.Query().Get("content-type"))
	assert.NotEmpty(t, u.Query().Get("expires"))
}

func TestManager_UseUnknownDisk(t *testing.T) {
	_, err := storage.Use("ftp")
	assert.Error(t, err)

	storage.RegisterDisk("tmp", storage.NewLocalDisk(t.TempDir(), ""))
	d, err := storage.Use("tmp")
	require.NoError(t, err)
	assert.NotNil(t, d)
}
