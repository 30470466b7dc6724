package main

import (
	"errors"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Hamzakourou605/reco-movies/internal/admin"
	"github.com/Hamzakourou605/reco-movies/internal/api"
	"github.com/Hamzakourou605/reco-movies/internal/dashboard"
	"github.com/Hamzakourou605/reco-movies/internal/database"
	"github.com/Hamzakourou605/reco-movies/internal/movielens"
	"github.com/Hamzakourou605/reco-movies/internal/posters"
	"github.com/Hamzakourou605/reco-movies/internal/recommender"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded, continuing with environment variables")
	}

	if m := os.Getenv("GIN_MODE"); m != "" {
		gin.SetMode(m)
	}

	policy := recommender.DefaultPolicy()
	if path := os.Getenv("POLICY_PATH"); path != "" {
		p, err := recommender.LoadPolicy(path)
		if err != nil {
			log.Fatalf("invalid policy file %s: %v", path, err)
		}
		policy = p
	}

	source, err := newSource()
	if err != nil {
		log.Fatalf("dataset source: %v", err)
	}

	modelPath := os.Getenv("MODEL_PATH")
	if modelPath == "" {
		modelPath = "recommender_model.json"
	}

	train := func() (*recommender.Engine, error) {
		return recommender.Train(source, policy)
	}

	engine, err := recommender.Load(modelPath)
	switch {
	case err == nil:
		log.Printf("model loaded from %s", modelPath)
	case errors.Is(err, recommender.ErrArtifactNotFound), errors.Is(err, recommender.ErrArtifactCorrupt):
		log.Printf("cannot use model artifact (%v), training from source", err)
		engine, err = train()
		if err != nil {
			log.Fatalf("training failed: %v", err)
		}
		if err := engine.Save(modelPath); err != nil {
			log.Fatalf("saving model failed: %v", err)
		}
		log.Printf("model trained and saved to %s", modelPath)
	default:
		log.Fatalf("loading model failed: %v", err)
	}

	holder := api.NewHolder()
	holder.Publish(engine)

	var posterFn api.PosterFunc
	fetcher := posters.NewFetcher(posters.NewConfig())
	if fetcher.Enabled() {
		posterFn = fetcher.GetOrDownload
	} else {
		log.Println("TMDB_API_KEY not set, serving without posters")
	}

	r := gin.Default()
	api.New(holder, posterFn).Register(r)
	dashboard.New(holder).Register(r)
	(&admin.Handlers{
		Holder:    holder,
		Train:     train,
		ModelPath: modelPath,
	}).Register(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

// newSource picks the dataset backend. The default is a MovieLens CSV
// directory; DATA_SOURCE=postgres reads the same tables from SQL.
func newSource() (recommender.Source, error) {
	if os.Getenv("DATA_SOURCE") == "postgres" {
		db, err := database.Connect()
		if err != nil {
			return nil, err
		}
		return movielens.NewSQLSource(db), nil
	}
	dir := os.Getenv("DATA_DIR")
	if dir == "" {
		dir = "data"
	}
	return movielens.NewCSVSource(dir), nil
}
