// Package dashboard serves the interactive charts over the same engine
// queries the JSON API uses.
package dashboard

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Hamzakourou605/reco-movies/internal/api"
	"github.com/Hamzakourou605/reco-movies/internal/recommender"
)

type renderer interface {
	Render(w io.Writer) error
}

type Dashboard struct {
	holder *api.Holder
}

func New(holder *api.Holder) *Dashboard {
	return &Dashboard{holder: holder}
}

func (d *Dashboard) Register(r *gin.Engine) {
	r.GET("/dashboard", d.IndexHandler)
	r.GET("/dashboard/top", d.TopMoviesHandler)
	r.GET("/dashboard/genres", d.GenresHandler)
	r.GET("/dashboard/genre-counts", d.GenreCountsHandler)
	r.GET("/dashboard/ratings", d.RatingsHandler)
	r.GET("/dashboard/user/:id", d.UserHandler)
}

// engine returns the published engine, or nil after writing a "not
// ready" page.
func (d *Dashboard) engine(c *gin.Context) *recommender.Engine {
	e := d.holder.Engine()
	if e == nil {
		c.Data(http.StatusServiceUnavailable, "text/html; charset=utf-8",
			[]byte("<html><body><h1>MyTflix</h1><p>The model is still loading, try again shortly.</p></body></html>"))
	}
	return e
}

func render(c *gin.Context, chart renderer) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := chart.Render(c.Writer); err != nil {
		c.String(http.StatusInternalServerError, "chart render failed: %v", err)
	}
}

func (d *Dashboard) IndexHandler(c *gin.Context) {
	e := d.engine(c)
	if e == nil {
		return
	}
	stats := e.Stats()
	page := fmt.Sprintf(`<html><head><title>MyTflix Dashboard</title></head><body>
<h1>MyTflix Dashboard</h1>
<p>%d movies, %d ratings from %d users (mean rating %.2f)</p>
<ul>
<li><a href="/dashboard/top">Top rated movies</a></li>
<li><a href="/dashboard/genres">Average rating by genre</a></li>
<li><a href="/dashboard/genre-counts">Movies per genre</a></li>
<li><a href="/dashboard/ratings">Rating distribution</a></li>
<li>Recommendations for a user: /dashboard/user/&lt;id&gt;</li>
</ul>
</body></html>`, stats.TotalMovies, stats.TotalRatings, stats.TotalUsers, stats.AvgRating)
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (d *Dashboard) TopMoviesHandler(c *gin.Context) {
	e := d.engine(c)
	if e == nil {
		return
	}
	n := intQuery(c, "n", 20)
	render(c, TopMoviesChart(e.TopMovies(n)))
}

func (d *Dashboard) GenresHandler(c *gin.Context) {
	e := d.engine(c)
	if e == nil {
		return
	}
	render(c, GenreAvgChart(e.AllGenres(), e.StatsByGenre))
}

func (d *Dashboard) GenreCountsHandler(c *gin.Context) {
	e := d.engine(c)
	if e == nil {
		return
	}
	render(c, GenreCountChart(e.AllGenres(), e.StatsByGenre))
}

func (d *Dashboard) RatingsHandler(c *gin.Context) {
	e := d.engine(c)
	if e == nil {
		return
	}
	render(c, RatingHistogramChart(e.RatingHistogram()))
}

// UserHandler shows personalized recommendations. An empty result is a
// normal state here: the page falls back to the global top list instead
// of erroring.
func (d *Dashboard) UserHandler(c *gin.Context) {
	e := d.engine(c)
	if e == nil {
		return
	}
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, "invalid user id")
		return
	}
	n := intQuery(c, "n", 10)

	rows := e.RecommendationsByRatings(userID, n)
	fallback := false
	if len(rows) == 0 {
		fallback = true
		rows = e.TopMovies(n)
	}
	render(c, RecommendationsChart(rows, userID, fallback))
}

func intQuery(c *gin.Context, name string, def int) int {
	if v, err := strconv.Atoi(c.Query(name)); err == nil && v > 0 {
		return v
	}
	return def
}
