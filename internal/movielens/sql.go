package movielens

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/Hamzakourou605/reco-movies/internal/recommender"
)

// Row types mirror the MovieLens CSV columns loaded into SQL.

type movieRow struct {
	MovieID int    `gorm:"column:movie_id;primaryKey"`
	Title   string `gorm:"column:title"`
	Genres  string `gorm:"column:genres"`
}

func (movieRow) TableName() string { return "movies" }

type ratingRow struct {
	UserID    int     `gorm:"column:user_id"`
	MovieID   int     `gorm:"column:movie_id"`
	Rating    float64 `gorm:"column:rating"`
	Timestamp int64   `gorm:"column:timestamp"`
}

func (ratingRow) TableName() string { return "ratings" }

type tagRow struct {
	UserID    int    `gorm:"column:user_id"`
	MovieID   int    `gorm:"column:movie_id"`
	Tag       string `gorm:"column:tag"`
	Timestamp int64  `gorm:"column:timestamp"`
}

func (tagRow) TableName() string { return "tags" }

// SQLSource reads the three tables from a database. Rows are fetched in
// key order so training over the same data stays reproducible.
type SQLSource struct {
	DB *gorm.DB
}

func NewSQLSource(db *gorm.DB) *SQLSource {
	return &SQLSource{DB: db}
}

func (s *SQLSource) Load() (*recommender.Tables, error) {
	var movieRows []movieRow
	if err := s.DB.Order("movie_id ASC").Find(&movieRows).Error; err != nil {
		return nil, fmt.Errorf("select movies: %w", err)
	}
	var ratingRows []ratingRow
	if err := s.DB.Order("user_id ASC, movie_id ASC, timestamp ASC").Find(&ratingRows).Error; err != nil {
		return nil, fmt.Errorf("select ratings: %w", err)
	}
	var tagRows []tagRow
	if err := s.DB.Order("user_id ASC, movie_id ASC, timestamp ASC").Find(&tagRows).Error; err != nil {
		return nil, fmt.Errorf("select tags: %w", err)
	}

	t := &recommender.Tables{}
	for _, r := range movieRows {
		t.Movies = append(t.Movies, recommender.Movie{
			MovieID: r.MovieID,
			Title:   r.Title,
			Genres:  recommender.ParseGenres(r.Genres),
			Year:    recommender.ParseYear(r.Title),
		})
	}
	for _, r := range ratingRows {
		t.Ratings = append(t.Ratings, recommender.Rating{
			UserID:    r.UserID,
			MovieID:   r.MovieID,
			Rating:    r.Rating,
			Timestamp: r.Timestamp,
		})
	}
	for _, r := range tagRows {
		t.Tags = append(t.Tags, recommender.Tag{
			UserID:    r.UserID,
			MovieID:   r.MovieID,
			Tag:       r.Tag,
			Timestamp: r.Timestamp,
		})
	}
	return t, nil
}
