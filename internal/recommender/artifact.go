package recommender

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goccy/go-json"
)

// artifactVersion is bumped whenever the persisted schema changes shape.
// Load refuses artifacts from a different version.
const artifactVersion = 1

// artifact is the single persisted file: the three source tables plus the
// derived aggregates, so a load never has to touch the dataset.
type artifact struct {
	Version    int                   `json:"version"`
	SavedAt    time.Time             `json:"saved_at"`
	Policy     Policy                `json:"policy"`
	Movies     []Movie               `json:"movies"`
	Ratings    []Rating              `json:"ratings"`
	Tags       []Tag                 `json:"tags"`
	MovieStats map[int]MovieStats    `json:"movie_stats"`
	GenreStats map[string]GenreStats `json:"genre_stats"`
}

// Save writes the trained model to path. The artifact is written to a
// temporary file first and renamed into place, so a failed save never
// leaves a partial file behind.
func (e *Engine) Save(path string) error {
	art := artifact{
		Version:    artifactVersion,
		SavedAt:    time.Now().UTC(),
		Policy:     e.policy,
		Movies:     e.movies,
		Ratings:    e.ratings,
		Tags:       e.tags,
		MovieStats: e.movieStats,
		GenreStats: e.genreStats,
	}
	data, err := json.Marshal(art)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close artifact: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish artifact: %w", err)
	}
	return nil
}

// Load reads an artifact produced by Save and returns a ready-to-query
// engine. A missing file is ErrArtifactNotFound so callers can fall back
// to training; anything undecodable or of the wrong shape is
// ErrArtifactCorrupt.
func Load(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	var art artifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	if art.Version != artifactVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrArtifactCorrupt, art.Version, artifactVersion)
	}
	if len(art.Movies) == 0 || art.MovieStats == nil || art.GenreStats == nil {
		return nil, fmt.Errorf("%w: missing tables or aggregates", ErrArtifactCorrupt)
	}
	if err := art.Policy.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}

	e := &Engine{
		policy:     art.Policy,
		movies:     art.Movies,
		ratings:    art.Ratings,
		tags:       art.Tags,
		movieStats: art.MovieStats,
		genreStats: art.GenreStats,
	}
	sort.Slice(e.movies, func(i, j int) bool { return e.movies[i].MovieID < e.movies[j].MovieID })
	e.buildIndexes()
	e.restoreDerived()
	return e, nil
}

// restoreDerived recomputes the small derived values that are cheaper to
// rebuild than to persist (global stats, histogram). The stored per-movie
// and per-genre aggregates are kept as saved.
func (e *Engine) restoreDerived() {
	total := 0
	var sum float64
	bucketCounts := make(map[float64]int)
	for _, r := range e.ratings {
		if _, ok := e.movieIdx[r.MovieID]; !ok {
			continue
		}
		total++
		sum += r.Rating
		bucketCounts[r.Rating]++
	}
	e.stats = DatasetStats{
		TotalMovies:  len(e.movies),
		TotalRatings: total,
		TotalUsers:   len(e.userIDs),
	}
	if total > 0 {
		e.stats.AvgRating = sum / float64(total)
	}

	values := make([]float64, 0, len(bucketCounts))
	for v := range bucketCounts {
		values = append(values, v)
	}
	sort.Float64s(values)
	e.histogram = nil
	for _, v := range values {
		e.histogram = append(e.histogram, RatingBucket{Rating: v, Count: bucketCounts[v]})
	}
}
