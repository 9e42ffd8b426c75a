package tickets

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	store, err := NewFileStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	assert.DirExists(t, filepath.Join(root, BucketQR))
	assert.DirExists(t, filepath.Join(root, BucketTickets))

	_, err = store.Get(ctx, TicketKey("b1"))
	assert.ErrorIs(t, err, ErrArtifactNotFound)

	path, err := store.Put(ctx, TicketKey("b1"), []byte("%PDF-1.3"))
	require.NoError(t, err)
	assert.Equal(t, "tickets/ticket_b1.pdf", path)

	data, err := store.Get(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.3"), data)

	local, err := store.ResolveAsset(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "tickets", "ticket_b1.pdf"), local)

	// No temp files are left behind
	entries, err := os.ReadDir(filepath.Join(root, BucketTickets))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStoreRejectsEscapingKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "/etc/passwd", "../outside.pdf", "qr/../../outside.png", ".."} {
		_, err := store.Put(ctx, key, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestFileStoreResolveAsset(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.ResolveAsset("qr/missing.png")
	assert.Error(t, err)

	_, err = store.ResolveAsset("qr")
	assert.Error(t, err)

	logo := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(logo, []byte("png"), 0o644))
	local, err := store.ResolveAsset(logo)
	require.NoError(t, err)
	assert.Equal(t, logo, local)
}
