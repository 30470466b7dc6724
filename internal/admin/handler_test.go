package admin

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hamzakourou605/reco-movies/internal/api"
	"github.com/Hamzakourou605/reco-movies/internal/recommender"
)

type staticSource struct{ tables *recommender.Tables }

func (s staticSource) Load() (*recommender.Tables, error) { return s.tables, nil }

func testEngineFactory() func() (*recommender.Engine, error) {
	return func() (*recommender.Engine, error) {
		return recommender.Train(staticSource{tables: &recommender.Tables{
			Movies: []recommender.Movie{
				{MovieID: 1, Title: "The Grand Escape (1995)", Genres: []string{"Action"}},
			},
			Ratings: []recommender.Rating{
				{UserID: 1, MovieID: 1, Rating: 4.0, Timestamp: 100},
			},
		}}, recommender.DefaultPolicy())
	}
}

func TestSaveRequiresLoadedModel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handlers{
		Holder:    api.NewHolder(),
		Train:     testEngineFactory(),
		ModelPath: filepath.Join(t.TempDir(), "model.json"),
	}

	r := gin.New()
	r.POST("/save", h.SaveHandler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/save", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRetrainPublishesAndSaves(t *testing.T) {
	gin.SetMode(gin.TestMode)
	modelPath := filepath.Join(t.TempDir(), "model.json")
	holder := api.NewHolder()
	h := &Handlers{
		Holder:    holder,
		Train:     testEngineFactory(),
		ModelPath: modelPath,
	}

	r := gin.New()
	r.POST("/retrain", h.RetrainHandler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/retrain", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"retrained":true`)

	// The new engine is live and the artifact is on disk.
	require.NotNil(t, holder.Engine())
	_, err := os.Stat(modelPath)
	require.NoError(t, err)

	loaded, err := recommender.Load(modelPath)
	require.NoError(t, err)
	assert.Equal(t, holder.Engine().TopMovies(10), loaded.TopMovies(10))
}

func TestRetrainFailureKeepsOldModel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	holder := api.NewHolder()
	old, err := testEngineFactory()()
	require.NoError(t, err)
	holder.Publish(old)

	h := &Handlers{
		Holder: holder,
		Train: func() (*recommender.Engine, error) {
			return nil, recommender.ErrDataLoad
		},
		ModelPath: filepath.Join(t.TempDir(), "model.json"),
	}

	r := gin.New()
	r.POST("/retrain", h.RetrainHandler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/retrain", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	// The previous engine keeps serving.
	assert.Same(t, old, holder.Engine())
}
