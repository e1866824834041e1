package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"film-collection/collection"
)

const sample = `[
  {"title": "Matrix", "genre": "SciFi", "year": 1999, "director": "Wachowski"},
  {"title": "", "genre": "Nothing"},
  {"id": 77, "title": "Alien", "year": 1979, "director": "Scott"}
]`

func TestDecodeFilms(t *testing.T) {
	films, err := decodeFilms(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, films, 3)
	assert.Equal(t, "Wachowski", films[0].Director)

	_, err = decodeFilms(strings.NewReader(`{"title": "not an array"}`))
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "films.json")
	require.NoError(t, os.WriteFile(src, []byte(sample), 0o600))
	dbPath := filepath.Join(dir, "data", "films.db")

	for _, k := range []string{"DB_DRIVER", "LOG_FORMAT", "PASSWORD_MODE", "BCRYPT_COST", "CACHE_ENABLED"} {
		t.Setenv(k, "")
	}
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("LOG_LEVEL", "error")

	run := func(args ...string) string {
		cmd := newImportCmd()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(args)
		require.NoError(t, cmd.Execute())
		return out.String()
	}

	out := run(src)
	assert.Contains(t, out, "Successfully imported: 2 films")
	assert.Contains(t, out, "Errors: 1")
	run(src)
	out = run("--reset", src)
	assert.Contains(t, out, "Cleaning up existing database files...")

	db, err := collection.NewDatabase(dbPath)
	require.NoError(t, err)
	defer db.Close()
	films, err := collection.NewFilmStore(db).GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, films, 2)
	titles := []string{films[0].Title, films[1].Title}
	assert.ElementsMatch(t, []string{"Matrix", "Alien"}, titles)
	for _, f := range films {
		assert.NotEqual(t, int64(77), f.ID)
	}
}
