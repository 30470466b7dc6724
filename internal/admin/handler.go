package admin

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Hamzakourou605/reco-movies/internal/api"
	"github.com/Hamzakourou605/reco-movies/internal/auth"
	"github.com/Hamzakourou605/reco-movies/internal/recommender"
)

// Handlers owns the admin surface: login, retrain and save. Retraining
// builds a complete new engine before touching the holder, so query
// traffic keeps hitting the old model until the swap.
type Handlers struct {
	Holder    *api.Holder
	Train     func() (*recommender.Engine, error)
	ModelPath string
}

func (h *Handlers) Register(r *gin.Engine) {
	r.POST("/admin/login", auth.LoginHandler)

	protected := r.Group("/admin", auth.RequireAuth())
	protected.POST("/retrain", h.RetrainHandler)
	protected.POST("/save", h.SaveHandler)
}

func (h *Handlers) RetrainHandler(c *gin.Context) {
	engine, err := h.Train()
	if err != nil {
		log.Printf("retrain failed: %v", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	h.Holder.Publish(engine)

	if err := engine.Save(h.ModelPath); err != nil {
		// The new model is live; only persistence failed.
		log.Printf("saving retrained model failed: %v", err)
		c.JSON(http.StatusOK, gin.H{"retrained": true, "saved": false, "save_error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"retrained": true, "saved": true})
}

func (h *Handlers) SaveHandler(c *gin.Context) {
	engine := h.Holder.Engine()
	if engine == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model not loaded yet"})
		return
	}
	if err := engine.Save(h.ModelPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": true, "path": h.ModelPath})
}
