package posters

import (
	"fmt"
	"os"
)

const (
	BaseURL      = "https://api.themoviedb.org/3"
	ImageBaseURL = "https://image.tmdb.org/t/p/"
)

const (
	SizePosterW185 = "w185"
	SizePosterW342 = "w342"
	SizePosterW500 = "w500"
)

type Config struct {
	APIKey   string
	CacheDir string
}

func NewConfig() *Config {
	dir := os.Getenv("POSTER_CACHE_DIR")
	if dir == "" {
		dir = "posters"
	}
	return &Config{
		APIKey:   os.Getenv("TMDB_API_KEY"),
		CacheDir: dir,
	}
}

func BuildImageURL(size, path string) string {
	if path == "" {
		return ""
	}
	return fmt.Sprintf("%s%s%s", ImageBaseURL, size, path)
}

func BuildPosterURL(path string) string {
	return BuildImageURL(SizePosterW342, path)
}
