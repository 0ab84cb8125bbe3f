package file_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/authenticator/outbound/file"
	"github.com/shandysiswandi/authbite/internal/pkg/instrument"
	"github.com/shandysiswandi/authbite/internal/pkg/uid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const path = "data/secrets.json"

func newStore(t *testing.T, fsys afero.Fs) *file.File {
	t.Helper()

	s, err := file.NewFile(context.Background(), fsys, path, uid.NewUUID(), instrument.NewNoop())
	require.NoError(t, err)
	return s
}

func TestFile_AddListRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	s := newStore(t, fsys)

	entries, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.NoError(t, s.Add(ctx, entity.Entry{ID: "1", Name: "GitHub", Secret: "JBSWY3DPEHPK3PXP"}))
	require.NoError(t, s.Add(ctx, entity.Entry{ID: "2", Name: "GitHub", Secret: "GEZDGNBVGY3TQOJQ"}))
	require.NoError(t, s.Add(ctx, entity.Entry{ID: "3", Name: "AWS", Secret: "MFRGGZDFMZTWQ2LK"}))

	entries, err = s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(entries))

	ok, err := s.Remove(ctx, "", "2")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Remove(ctx, "", "2")
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded := newStore(t, fsys)
	entries, err = reloaded.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "3"}, ids(entries))
	assert.Equal(t, "GitHub", entries[0].Name)
}

func TestFile_ScopesEntriesByOwner(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	s := newStore(t, fsys)

	require.NoError(t, s.Add(ctx, entity.Entry{ID: "1", Name: "local", Secret: "JBSWY3DPEHPK3PXP"}))
	require.NoError(t, s.Add(ctx, entity.Entry{ID: "2", Name: "bank", Secret: "GEZDGNBVGY3TQOJQ", Owner: "alice"}))
	require.NoError(t, s.Add(ctx, entity.Entry{ID: "3", Name: "mail", Secret: "MFRGGZDFMZTWQ2LK", Owner: "bob"}))

	local, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(local))

	alice, err := s.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(alice))

	ok, err := s.Remove(ctx, "bob", "2")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.Remove(ctx, "", "3")
	require.NoError(t, err)
	assert.False(t, ok)

	reloaded := newStore(t, fsys)
	bob, err := reloaded.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bob, 1)
	assert.Equal(t, entity.Entry{ID: "3", Name: "mail", Secret: "MFRGGZDFMZTWQ2LK", Owner: "bob"}, bob[0])

	raw, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	var doc []map[string]string
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.NotContains(t, doc[0], "owner")
	assert.Equal(t, "alice", doc[1]["owner"])
}

func TestFile_ListReturnsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newStore(t, afero.NewMemMapFs())
	require.NoError(t, s.Add(ctx, entity.Entry{ID: "1", Name: "GitHub", Secret: "JBSWY3DPEHPK3PXP"}))

	entries, err := s.List(ctx, "")
	require.NoError(t, err)
	entries[0].Name = "changed"

	again, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "GitHub", again[0].Name)
}

func TestFile_LegacyEntriesGetIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	legacy := `[{"Name":"GitHub","Secret":"JBSWY3DPEHPK3PXP"},{"Name":"AWS","Secret":"MFRGGZDFMZTWQ2LK"}]`
	require.NoError(t, afero.WriteFile(fsys, path, []byte(legacy), 0o600))

	s := newStore(t, fsys)
	entries, err := s.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "GitHub", entries[0].Name)
	assert.Equal(t, "JBSWY3DPEHPK3PXP", entries[0].Secret)
	assert.True(t, uid.IsUUID(entries[0].ID))
	assert.NotEqual(t, entries[0].ID, entries[1].ID)

	raw, err := afero.ReadFile(fsys, path)
	require.NoError(t, err)
	var doc []map[string]string
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, entries[0].ID, doc[0]["id"])
	assert.Equal(t, "GitHub", doc[0]["name"])

	again, err := newStore(t, fsys).List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, ids(entries), ids(again))
}

func TestFile_CorruptFileStartsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, path, []byte("not json"), 0o600))

	s := newStore(t, fsys)
	entries, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, entries)

	files, err := afero.ReadDir(fsys, "data")
	require.NoError(t, err)
	var backups int
	for _, f := range files {
		if strings.HasPrefix(f.Name(), "secrets.json.corrupt-") {
			backups++
		}
	}
	assert.Equal(t, 1, backups)
}

func TestFile_WriteFailureKeepsState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	base := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(base, path, []byte(`[{"id":"1","name":"GitHub","secret":"JBSWY3DPEHPK3PXP"}]`), 0o600))

	s := newStore(t, afero.NewReadOnlyFs(base))

	require.Error(t, s.Add(ctx, entity.Entry{ID: "2", Name: "AWS", Secret: "MFRGGZDFMZTWQ2LK"}))

	ok, err := s.Remove(ctx, "", "1")
	require.Error(t, err)
	assert.False(t, ok)

	entries, err := s.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, ids(entries))
}

func ids(entries []entity.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}
