package movielens

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func validDataset(t *testing.T) string {
	return writeDataset(t, map[string]string{
		MoviesFile: "movieId,title,genres\n" +
			"1,Toy Story (1995),Adventure|Animation|Children|Comedy|Fantasy\n" +
			"2,\"American President, The (1995)\",Comedy|Drama|Romance\n" +
			"3,Oddball (2015),(no genres listed)\n",
		RatingsFile: "userId,movieId,rating,timestamp\n" +
			"1,1,4.0,964982703\n" +
			"1,2,3.5,964981247\n" +
			"2,1,5.0,847434962\n",
		TagsFile: "userId,movieId,tag,timestamp\n" +
			"2,1,pixar,1139045764\n",
	})
}

func TestCSVSourceLoad(t *testing.T) {
	src := NewCSVSource(validDataset(t))
	tables, err := src.Load()
	require.NoError(t, err)

	require.Len(t, tables.Movies, 3)
	assert.Equal(t, 1, tables.Movies[0].MovieID)
	assert.Equal(t, "Toy Story (1995)", tables.Movies[0].Title)
	assert.Equal(t, 1995, tables.Movies[0].Year)
	assert.Equal(t, []string{"Adventure", "Animation", "Children", "Comedy", "Fantasy"}, tables.Movies[0].Genres)

	// Quoted title containing a comma.
	assert.Equal(t, "American President, The (1995)", tables.Movies[1].Title)

	// Placeholder genres parse to an empty set.
	assert.Empty(t, tables.Movies[2].Genres)

	require.Len(t, tables.Ratings, 3)
	assert.Equal(t, 1, tables.Ratings[0].UserID)
	assert.Equal(t, 4.0, tables.Ratings[0].Rating)
	assert.Equal(t, int64(964982703), tables.Ratings[0].Timestamp)

	require.Len(t, tables.Tags, 1)
	assert.Equal(t, "pixar", tables.Tags[0].Tag)
}

func TestCSVSourceMissingFile(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		MoviesFile: "movieId,title,genres\n1,Solo (2000),Drama\n",
	})
	_, err := NewCSVSource(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), RatingsFile)
}

func TestCSVSourceMissingColumn(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		header  string
		missing string
	}{
		{"movies without genres", MoviesFile, "movieId,title\n", "genres"},
		{"ratings without rating", RatingsFile, "userId,movieId,timestamp\n", "rating"},
		{"tags without tag", TagsFile, "userId,movieId,timestamp\n", "tag"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := map[string]string{
				MoviesFile:  "movieId,title,genres\n",
				RatingsFile: "userId,movieId,rating,timestamp\n",
				TagsFile:    "userId,movieId,tag,timestamp\n",
			}
			files[tt.file] = tt.header
			_, err := NewCSVSource(writeDataset(t, files)).Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestCSVSourceMalformedRow(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		MoviesFile:  "movieId,title,genres\nnot-a-number,Broken (2000),Drama\n",
		RatingsFile: "userId,movieId,rating,timestamp\n",
		TagsFile:    "userId,movieId,tag,timestamp\n",
	})
	_, err := NewCSVSource(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "movieId")
}

func TestCSVSourceBadRatingValue(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		MoviesFile:  "movieId,title,genres\n1,Solo (2000),Drama\n",
		RatingsFile: "userId,movieId,rating,timestamp\n1,1,excellent,964982703\n",
		TagsFile:    "userId,movieId,tag,timestamp\n",
	})
	_, err := NewCSVSource(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rating")
}

func TestCSVSourceColumnOrderIndependent(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		MoviesFile:  "title,genres,movieId\nSolo (2000),Drama,7\n",
		RatingsFile: "timestamp,rating,movieId,userId\n100,4.5,7,3\n",
		TagsFile:    "userId,movieId,tag,timestamp\n",
	})
	tables, err := NewCSVSource(dir).Load()
	require.NoError(t, err)
	require.Len(t, tables.Movies, 1)
	assert.Equal(t, 7, tables.Movies[0].MovieID)
	require.Len(t, tables.Ratings, 1)
	assert.Equal(t, 3, tables.Ratings[0].UserID)
	assert.Equal(t, 4.5, tables.Ratings[0].Rating)
}
