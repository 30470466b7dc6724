// Package movielens provides dataset sources for the recommendation
// engine: a MovieLens-layout CSV directory and a SQL database holding the
// same three tables.
package movielens

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Hamzakourou605/reco-movies/internal/recommender"
)

const (
	MoviesFile  = "movies.csv"
	RatingsFile = "ratings.csv"
	TagsFile    = "tags.csv"
)

// CSVSource reads the three MovieLens tables from a directory.
type CSVSource struct {
	Dir string
}

func NewCSVSource(dir string) *CSVSource {
	return &CSVSource{Dir: dir}
}

func (s *CSVSource) Load() (*recommender.Tables, error) {
	movies, err := s.loadMovies()
	if err != nil {
		return nil, err
	}
	ratings, err := s.loadRatings()
	if err != nil {
		return nil, err
	}
	tags, err := s.loadTags()
	if err != nil {
		return nil, err
	}
	return &recommender.Tables{Movies: movies, Ratings: ratings, Tags: tags}, nil
}

// columns maps required header names to their positions, rejecting files
// that are missing a column the loader needs.
func columns(header []string, required ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return idx, nil
}

func (s *CSVSource) open(name string) (*os.File, *csv.Reader, error) {
	path := filepath.Join(s.Dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", name, err)
	}
	// The default reader enforces one field count per file, so a short
	// or ragged row surfaces as csv.ErrFieldCount instead of a panic.
	return f, csv.NewReader(f), nil
}

func (s *CSVSource) loadMovies() ([]recommender.Movie, error) {
	f, r, err := s.open(MoviesFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", MoviesFile, err)
	}
	idx, err := columns(header, "movieId", "title", "genres")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", MoviesFile, err)
	}

	var movies []recommender.Movie
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", MoviesFile, line, err)
		}
		id, err := strconv.Atoi(row[idx["movieId"]])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad movieId %q", MoviesFile, line, row[idx["movieId"]])
		}
		title := row[idx["title"]]
		movies = append(movies, recommender.Movie{
			MovieID: id,
			Title:   title,
			Genres:  recommender.ParseGenres(row[idx["genres"]]),
			Year:    recommender.ParseYear(title),
		})
	}
	return movies, nil
}

func (s *CSVSource) loadRatings() ([]recommender.Rating, error) {
	f, r, err := s.open(RatingsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", RatingsFile, err)
	}
	idx, err := columns(header, "userId", "movieId", "rating", "timestamp")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", RatingsFile, err)
	}

	var ratings []recommender.Rating
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", RatingsFile, line, err)
		}
		userID, err := strconv.Atoi(row[idx["userId"]])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad userId %q", RatingsFile, line, row[idx["userId"]])
		}
		movieID, err := strconv.Atoi(row[idx["movieId"]])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad movieId %q", RatingsFile, line, row[idx["movieId"]])
		}
		value, err := strconv.ParseFloat(row[idx["rating"]], 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad rating %q", RatingsFile, line, row[idx["rating"]])
		}
		ts, err := strconv.ParseInt(row[idx["timestamp"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad timestamp %q", RatingsFile, line, row[idx["timestamp"]])
		}
		ratings = append(ratings, recommender.Rating{
			UserID:    userID,
			MovieID:   movieID,
			Rating:    value,
			Timestamp: ts,
		})
	}
	return ratings, nil
}

func (s *CSVSource) loadTags() ([]recommender.Tag, error) {
	f, r, err := s.open(TagsFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", TagsFile, err)
	}
	idx, err := columns(header, "userId", "movieId", "tag", "timestamp")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", TagsFile, err)
	}

	var tags []recommender.Tag
	for line := 2; ; line++ {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", TagsFile, line, err)
		}
		userID, err := strconv.Atoi(row[idx["userId"]])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad userId %q", TagsFile, line, row[idx["userId"]])
		}
		movieID, err := strconv.Atoi(row[idx["movieId"]])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad movieId %q", TagsFile, line, row[idx["movieId"]])
		}
		ts, err := strconv.ParseInt(row[idx["timestamp"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: bad timestamp %q", TagsFile, line, row[idx["timestamp"]])
		}
		tags = append(tags, recommender.Tag{
			UserID:    userID,
			MovieID:   movieID,
			Tag:       row[idx["tag"]],
			Timestamp: ts,
		})
	}
	return tags, nil
}
