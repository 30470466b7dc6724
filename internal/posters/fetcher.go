package posters

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"

	"github.com/Hamzakourou605/reco-movies/internal/recommender"
)

// Fetcher resolves a local poster image for a movie, downloading from
// TMDb on a cache miss. Posters are cosmetic: every failure path returns
// an empty path and the caller renders without an image.
type Fetcher struct {
	client   *Client
	cacheDir string
	enabled  bool
}

func NewFetcher(config *Config) *Fetcher {
	return &Fetcher{
		client:   NewClient(config),
		cacheDir: config.CacheDir,
		enabled:  config.APIKey != "",
	}
}

// Enabled reports whether the fetcher has an API key to work with.
func (f *Fetcher) Enabled() bool { return f.enabled }

// GetOrDownload returns the local path of the movie's poster, fetching
// and caching it on first use. Returns "" when no poster is available
// for any reason.
func (f *Fetcher) GetOrDownload(movieID int, title string) string {
	if !f.enabled {
		return ""
	}

	path := filepath.Join(f.cacheDir, fmt.Sprintf("%d-%s.jpg", movieID, slug.Make(searchTitle(title))))
	if _, err := os.Stat(path); err == nil {
		return path
	}

	results, err := f.client.SearchMovies(searchTitle(title), recommender.ParseYear(title))
	if err != nil {
		log.Printf("poster search failed for movie %d: %v", movieID, err)
		return ""
	}
	if len(results.Results) == 0 || results.Results[0].PosterPath == "" {
		return ""
	}

	data, err := f.client.DownloadImage(BuildPosterURL(results.Results[0].PosterPath))
	if err != nil {
		log.Printf("poster download failed for movie %d: %v", movieID, err)
		return ""
	}

	if err := os.MkdirAll(f.cacheDir, 0o755); err != nil {
		log.Printf("poster cache dir: %v", err)
		return ""
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Printf("poster cache write: %v", err)
		return ""
	}
	return path
}

// searchTitle strips the year suffix and moves a trailing article back to
// the front, so "Shawshank Redemption, The (1994)" searches as
// "The Shawshank Redemption".
func searchTitle(title string) string {
	t := strings.TrimSpace(title)
	if year := recommender.ParseYear(t); year > 0 {
		t = strings.TrimSpace(t[:strings.LastIndex(t, "(")])
	}
	for _, article := range []string{", The", ", A", ", An"} {
		if strings.HasSuffix(t, article) {
			t = strings.TrimPrefix(article, ", ") + " " + strings.TrimSuffix(t, article)
			break
		}
	}
	return t
}
