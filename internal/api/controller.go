package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Hamzakourou605/reco-movies/internal/recommender"
)

// MovieResponse is the public shape of one result row. Genres are
// rendered back to the pipe-delimited MovieLens form the clients expect.
type MovieResponse struct {
	MovieID     int     `json:"movieId"`
	Title       string  `json:"title"`
	Genres      string  `json:"genres"`
	AvgRating   float64 `json:"avg_rating"`
	RatingCount int     `json:"rating_count"`
	Score       float64 `json:"score,omitempty"`
	PosterPath  string  `json:"poster_path,omitempty"`
}

type RecommendationRequest struct {
	UserID int `json:"user_id" binding:"required"`
	N      int `json:"n_recommendations"`
}

type GenreRecommendationRequest struct {
	Genres []string `json:"genres" binding:"required"`
	N      int      `json:"n_recommendations"`
}

func (a *API) toResponses(rows []recommender.ScoredMovie, withPosters bool) []MovieResponse {
	out := make([]MovieResponse, 0, len(rows))
	for _, r := range rows {
		resp := MovieResponse{
			MovieID:     r.MovieID,
			Title:       r.Title,
			Genres:      r.GenreString(),
			AvgRating:   r.AvgRating,
			RatingCount: r.RatingCount,
			Score:       r.Score,
		}
		if withPosters && a.posters != nil {
			resp.PosterPath = a.posters(r.MovieID, r.Title)
		}
		out = append(out, resp)
	}
	return out
}

// engine returns the published engine, or nil after writing the 503
// "not ready" response.
func (a *API) engine(c *gin.Context) *recommender.Engine {
	e := a.holder.Engine()
	if e == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model not loaded yet"})
	}
	return e
}

// queryInt parses an integer query parameter, falling back to def when
// absent. A present but non-numeric value is a client error.
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter"})
		return 0, false
	}
	return v, true
}

func (a *API) RootHandler(c *gin.Context) {
	status := "online"
	if a.holder.Engine() == nil {
		status = "initializing"
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "MyTflix API - movie recommendation service",
		"status":  status,
		"endpoints": gin.H{
			"GET /health":                  "service health and readiness",
			"GET /top-films":               "best rated movies",
			"GET /films/genre/:genre":      "best rated movies in one genre",
			"GET /utilisateur/:id/films":   "movies rated by a user",
			"POST /recommandations":        "personalized recommendations",
			"POST /recommandations/genres": "recommendations for a genre list",
			"GET /recommend/:title":        "movies similar to a title",
			"GET /stats":                   "global dataset statistics",
			"GET /genres":                  "genre catalog with stats",
			"GET /utilisateurs/count":      "number of known users",
			"GET /dashboard":               "interactive charts",
		},
	})
}

func (a *API) HealthHandler(c *gin.Context) {
	if a.holder.Engine() == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "initializing",
			"message":   "model is still loading",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"model_loaded": true,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) TopFilmsHandler(c *gin.Context) {
	e := a.engine(c)
	if e == nil {
		return
	}
	n, ok := queryInt(c, "n", 20)
	if !ok {
		return
	}
	skip, ok := queryInt(c, "skip", 0)
	if !ok {
		return
	}
	if skip < 0 {
		skip = 0
	}

	rows := e.TopMovies(n + skip)
	if skip < len(rows) {
		rows = rows[skip:]
	} else {
		rows = nil
	}
	c.JSON(http.StatusOK, gin.H{"data": a.toResponses(rows, true)})
}

func (a *API) FilmsByGenreHandler(c *gin.Context) {
	e := a.engine(c)
	if e == nil {
		return
	}
	n, ok := queryInt(c, "n", 20)
	if !ok {
		return
	}
	rows := e.MoviesByGenre(c.Param("genre"), n)
	c.JSON(http.StatusOK, gin.H{"data": a.toResponses(rows, false)})
}

func (a *API) UserFilmsHandler(c *gin.Context) {
	e := a.engine(c)
	if e == nil {
		return
	}
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	n, ok := queryInt(c, "n", 50)
	if !ok {
		return
	}

	rows := e.UserRatings(userID, n)
	out := make([]gin.H, 0, len(rows))
	for _, r := range rows {
		out = append(out, gin.H{
			"movieId":   r.MovieID,
			"title":     r.Title,
			"genres":    r.GenreString(),
			"rating":    r.Rating,
			"timestamp": r.Timestamp,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// RecommendationsHandler serves personalized recommendations. When the
// engine has no history for the user it returns the global top list
// instead, flagged so clients can tell the two apart.
func (a *API) RecommendationsHandler(c *gin.Context) {
	e := a.engine(c)
	if e == nil {
		return
	}
	var req RecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.N <= 0 {
		req.N = 10
	}

	rows := e.RecommendationsByRatings(req.UserID, req.N)
	fallback := false
	if len(rows) == 0 && !e.HasUser(req.UserID) {
		fallback = true
		rows = e.TopMovies(req.N)
	}
	c.JSON(http.StatusOK, gin.H{
		"data":     a.toResponses(rows, true),
		"fallback": fallback,
	})
}

func (a *API) GenreRecommendationsHandler(c *gin.Context) {
	e := a.engine(c)
	if e == nil {
		return
	}
	var req GenreRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.N <= 0 {
		req.N = 15
	}

	rows := e.RecommendByGenres(req.Genres, req.N)
	c.JSON(http.StatusOK, gin.H{"data": a.toResponses(rows, false)})
}

func (a *API) StatsHandler(c *gin.Context) {
	e := a.engine(c)
	if e == nil {
		return
	}
	stats := e.Stats()
	c.JSON(http.StatusOK, gin.H{
		"total_films":   stats.TotalMovies,
		"total_ratings": stats.TotalRatings,
		"total_users":   stats.TotalUsers,
		"avg_rating":    stats.AvgRating,
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) GenresHandler(c *gin.Context) {
	e := a.engine(c)
	if e == nil {
		return
	}
	genres := e.AllGenres()
	stats := make(map[string]recommender.GenreStats, len(genres))
	for _, g := range genres {
		stats[g] = e.StatsByGenre(g)
	}
	c.JSON(http.StatusOK, gin.H{
		"genres": genres,
		"stats":  stats,
		"total":  len(genres),
	})
}

func (a *API) UserCountHandler(c *gin.Context) {
	e := a.engine(c)
	if e == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_users":   e.UserCount(),
		"available_ids": e.UserIDs(100),
	})
}

// RecommendByTitleHandler finds the first movie whose title contains the
// given text and ranks movies sharing its genres.
func (a *API) RecommendByTitleHandler(c *gin.Context) {
	e := a.engine(c)
	if e == nil {
		return
	}
	n, ok := queryInt(c, "n", 10)
	if !ok {
		return
	}

	matches := e.SearchByTitle(c.Param("title"))
	if len(matches) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "movie not found: " + c.Param("title")})
		return
	}

	seed := matches[0]
	rows := e.SimilarToMovie(seed.MovieID, n)
	c.JSON(http.StatusOK, gin.H{
		"seed": gin.H{"movieId": seed.MovieID, "title": seed.Title},
		"data": a.toResponses(rows, false),
	})
}
