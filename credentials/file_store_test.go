package credentials_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/feedbackportal/portal-client/credentials"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *credentials.FileStore {
	t.Helper()
	store, err := credentials.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewFileStoreRequiresFolder(t *testing.T) {
	_, err := credentials.NewFileStore("")
	require.Error(t, err)
}

func TestLoadEmptyStore(t *testing.T) {
	store := newFileStore(t)

	record, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestSaveLoadRoundtrip(t *testing.T) {
	store := newFileStore(t)

	saved := credentials.Record{
		User:  json.RawMessage(`{"_id":"u1","name":"A","role":"admin"}`),
		Token: "token-abc",
	}
	require.NoError(t, store.Save(saved))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, saved.Token, loaded.Token)
	require.JSONEq(t, string(saved.User), string(loaded.User))
}

func TestSaveOverwrites(t *testing.T) {
	store := newFileStore(t)

	require.NoError(t, store.Save(credentials.Record{User: json.RawMessage(`{"_id":"u1"}`), Token: "old"}))
	require.NoError(t, store.Save(credentials.Record{User: json.RawMessage(`{"_id":"u2"}`), Token: "new"}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "new", loaded.Token)
}

func TestClearRemovesUserAndTokenTogether(t *testing.T) {
	store := newFileStore(t)

	require.NoError(t, store.Save(credentials.Record{User: json.RawMessage(`{"_id":"u1"}`), Token: "tok"}))
	require.NoError(t, store.Clear())

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestClearIsIdempotent(t *testing.T) {
	store := newFileStore(t)

	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
}

func TestCredentialsFileIsPrivate(t *testing.T) {
	folder := t.TempDir()
	store, err := credentials.NewFileStore(folder)
	require.NoError(t, err)
	require.NoError(t, store.Save(credentials.Record{Token: "tok", User: json.RawMessage(`{}`)}))

	info, err := os.Stat(filepath.Join(folder, "credentials.json"))
	require.NoError(t, err)
	require.EqualValues(t, 0o600, info.Mode().Perm())
}
