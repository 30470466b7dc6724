package dashboard

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hamzakourou605/reco-movies/internal/api"
	"github.com/Hamzakourou605/reco-movies/internal/recommender"
)

type staticSource struct{ tables *recommender.Tables }

func (s staticSource) Load() (*recommender.Tables, error) { return s.tables, nil }

func newTestDashboard(t *testing.T, publish bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	holder := api.NewHolder()
	if publish {
		engine, err := recommender.Train(staticSource{tables: &recommender.Tables{
			Movies: []recommender.Movie{
				{MovieID: 1, Title: "The Grand Escape (1995)", Genres: []string{"Action"}},
				{MovieID: 2, Title: "Quiet Harbor (2001)", Genres: []string{"Drama"}},
			},
			Ratings: []recommender.Rating{
				{UserID: 1, MovieID: 1, Rating: 4.5, Timestamp: 100},
				{UserID: 1, MovieID: 2, Rating: 3.0, Timestamp: 101},
			},
		}}, recommender.DefaultPolicy())
		require.NoError(t, err)
		holder.Publish(engine)
	}

	r := gin.New()
	New(holder).Register(r)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestDashboardNotReady(t *testing.T) {
	r := newTestDashboard(t, false)
	w := get(r, "/dashboard")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "still loading")
}

func TestDashboardPages(t *testing.T) {
	r := newTestDashboard(t, true)

	for _, path := range []string{
		"/dashboard",
		"/dashboard/top",
		"/dashboard/genres",
		"/dashboard/genre-counts",
		"/dashboard/ratings",
	} {
		w := get(r, path)
		assert.Equalf(t, http.StatusOK, w.Code, "path %s", path)
		assert.Containsf(t, w.Header().Get("Content-Type"), "text/html", "path %s", path)
	}
}

func TestDashboardUserFallback(t *testing.T) {
	r := newTestDashboard(t, true)

	// A user without history gets the fallback page, not an error.
	w := get(r, "/dashboard/user/42")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "no rating history")

	w = get(r, "/dashboard/user/abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
