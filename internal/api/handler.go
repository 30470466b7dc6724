package api

import (
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/Hamzakourou605/reco-movies/internal/recommender"
)

// Holder publishes the trained engine to the request handlers. It starts
// empty, which the handlers surface as a 503 "not ready" state, and a
// retrain swaps in a fresh engine atomically without pausing readers.
type Holder struct {
	engine atomic.Pointer[recommender.Engine]
}

func NewHolder() *Holder { return &Holder{} }

func (h *Holder) Publish(e *recommender.Engine) { h.engine.Store(e) }

// Engine returns the current engine, or nil before the first publish.
func (h *Holder) Engine() *recommender.Engine { return h.engine.Load() }

// PosterFunc resolves a local poster path for a movie, "" when none.
// Satisfied by (*posters.Fetcher).GetOrDownload.
type PosterFunc func(movieID int, title string) string

// API exposes every engine query over HTTP. The poster func is optional;
// when nil, responses simply carry no poster paths.
type API struct {
	holder  *Holder
	posters PosterFunc
}

func New(holder *Holder, posterFn PosterFunc) *API {
	return &API{holder: holder, posters: posterFn}
}

// Register wires every public route onto the router.
func (a *API) Register(r *gin.Engine) {
	r.GET("/", a.RootHandler)
	r.GET("/health", a.HealthHandler)
	r.GET("/top-films", a.TopFilmsHandler)
	r.GET("/films/genre/:genre", a.FilmsByGenreHandler)
	r.GET("/utilisateur/:id/films", a.UserFilmsHandler)
	r.POST("/recommandations", a.RecommendationsHandler)
	r.POST("/recommandations/genres", a.GenreRecommendationsHandler)
	r.GET("/stats", a.StatsHandler)
	r.GET("/genres", a.GenresHandler)
	r.GET("/utilisateurs/count", a.UserCountHandler)
	r.GET("/recommend/:title", a.RecommendByTitleHandler)
}
