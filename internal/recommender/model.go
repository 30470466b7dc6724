package recommender

import (
	"sort"
	"strconv"
	"strings"
)

// NoGenresPlaceholder is the marker MovieLens uses for movies without
// genre tags. It is kept on the movie row but never reported as a genre.
const NoGenresPlaceholder = "(no genres listed)"

type Movie struct {
	MovieID int      `json:"movieId"`
	Title   string   `json:"title"`
	Genres  []string `json:"genres"`
	Year    int      `json:"year,omitempty"`
}

// GenreString renders the genre set back into the pipe-delimited form
// used by the MovieLens files and the public API.
func (m Movie) GenreString() string {
	if len(m.Genres) == 0 {
		return NoGenresPlaceholder
	}
	return strings.Join(m.Genres, "|")
}

// HasGenre reports whether the movie carries the exact genre tag.
// Matching is case-sensitive, never substring.
func (m Movie) HasGenre(genre string) bool {
	for _, g := range m.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

type Rating struct {
	UserID    int     `json:"userId"`
	MovieID   int     `json:"movieId"`
	Rating    float64 `json:"rating"`
	Timestamp int64   `json:"timestamp"`
}

type Tag struct {
	UserID    int    `json:"userId"`
	MovieID   int    `json:"movieId"`
	Tag       string `json:"tag"`
	Timestamp int64  `json:"timestamp"`
}

// Tables holds the three raw source tables the engine trains on.
type Tables struct {
	Movies  []Movie
	Ratings []Rating
	Tags    []Tag
}

// Source is implemented by dataset backends (CSV directory, SQL database).
type Source interface {
	Load() (*Tables, error)
}

// MovieStats are the per-movie aggregates derived at train time.
type MovieStats struct {
	AvgRating   float64 `json:"avg_rating"`
	RatingCount int     `json:"rating_count"`
}

// GenreStats summarise one genre: the mean of every rating given to a
// movie carrying the genre, and how many movies carry it.
type GenreStats struct {
	AvgRating   float64 `json:"avg_rating"`
	TotalMovies int     `json:"total_movies"`
}

// DatasetStats are the global figures shown on /stats.
type DatasetStats struct {
	TotalMovies  int     `json:"total_movies"`
	TotalRatings int     `json:"total_ratings"`
	TotalUsers   int     `json:"total_users"`
	AvgRating    float64 `json:"avg_rating"`
}

// ScoredMovie is a ranked result row: a movie joined with its aggregates
// and, for composite queries, the score that ordered it.
type ScoredMovie struct {
	Movie
	AvgRating   float64 `json:"avg_rating"`
	RatingCount int     `json:"rating_count"`
	Score       float64 `json:"score,omitempty"`
}

// UserMovie is one row of a user's rating history joined with the catalog.
type UserMovie struct {
	Movie
	Rating    float64 `json:"rating"`
	Timestamp int64   `json:"timestamp"`
}

// RatingBucket is one bar of the rating histogram (0.5 .. 5.0 steps).
type RatingBucket struct {
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
}

// ParseGenres splits a pipe-delimited genre field into a sorted,
// de-duplicated set. The placeholder value yields an empty set.
func ParseGenres(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" || field == NoGenresPlaceholder {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, g := range strings.Split(field, "|") {
		g = strings.TrimSpace(g)
		if g == "" || g == NoGenresPlaceholder || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

// ParseYear extracts the release year from a MovieLens title such as
// "Heat (1995)". Returns 0 when the title carries no year suffix.
func ParseYear(title string) int {
	t := strings.TrimSpace(title)
	if len(t) < 6 || !strings.HasSuffix(t, ")") {
		return 0
	}
	open := strings.LastIndex(t, "(")
	if open < 0 || len(t)-open != 6 {
		return 0
	}
	year, err := strconv.Atoi(t[open+1 : len(t)-1])
	if err != nil || year < 1800 || year > 2200 {
		return 0
	}
	return year
}
