package recommender

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "model.json")

	require.NoError(t, e.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	// Every query surface answers identically before and after the
	// round trip.
	assert.Equal(t, e.TopMovies(100), loaded.TopMovies(100))
	assert.Equal(t, e.MoviesByGenre("Drama", 10), loaded.MoviesByGenre("Drama", 10))
	assert.Equal(t, e.AllGenres(), loaded.AllGenres())
	for _, g := range e.AllGenres() {
		assert.Equal(t, e.StatsByGenre(g), loaded.StatsByGenre(g))
	}
	assert.Equal(t, e.Stats(), loaded.Stats())
	assert.Equal(t, e.UserCount(), loaded.UserCount())
	assert.Equal(t, e.RatingHistogram(), loaded.RatingHistogram())
	assert.Equal(t, e.UserRatings(1, 10), loaded.UserRatings(1, 10))
	assert.Equal(t, e.RecommendationsByRatings(1, 10), loaded.RecommendationsByRatings(1, 10))
	assert.Equal(t, e.RecommendByGenres([]string{"Action", "Drama"}, 10),
		loaded.RecommendByGenres([]string{"Action", "Drama"}, 10))
	assert.Equal(t, e.Policy(), loaded.Policy())
}

func TestLoadMissingArtifact(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestLoadCorruptArtifact(t *testing.T) {
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("not json at all{"), 0o644))
	_, err := Load(garbage)
	require.ErrorIs(t, err, ErrArtifactCorrupt)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, []byte("{}"), 0o644))
	_, err = Load(empty)
	require.ErrorIs(t, err, ErrArtifactCorrupt)
}

func TestLoadWrongVersion(t *testing.T) {
	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "model.json")
	require.NoError(t, e.Save(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	raw["version"] = json.RawMessage("99")
	data, err = json.Marshal(raw)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Load(path)
	require.ErrorIs(t, err, ErrArtifactCorrupt)
}

func TestSaveFailureLeavesNoArtifact(t *testing.T) {
	e := newTestEngine(t)
	path := filepath.Join(t.TempDir(), "no-such-dir", "model.json")

	require.Error(t, e.Save(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveOverwritesAtomically(t *testing.T) {
	e := newTestEngine(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "model.json")

	require.NoError(t, e.Save(path))
	require.NoError(t, e.Save(path))

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "model.json", entries[0].Name())

	_, err = Load(path)
	require.NoError(t, err)
}
