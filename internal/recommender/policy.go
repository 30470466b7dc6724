package recommender

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the tunable scoring constants. The defaults reproduce the
// behaviour the service shipped with; deployments can override them with
// a policy file.
type Policy struct {
	// Composite score weights. Must be non-negative and sum to 1.
	RatingWeight     float64 `yaml:"rating_weight" json:"rating_weight"`
	PopularityWeight float64 `yaml:"popularity_weight" json:"popularity_weight"`
	GenreWeight      float64 `yaml:"genre_weight" json:"genre_weight"`

	// A rating at or above this counts as "liked" when deriving a
	// user's preferred genres.
	LikedThreshold float64 `yaml:"liked_threshold" json:"liked_threshold"`
}

const weightTolerance = 1e-9

func DefaultPolicy() Policy {
	return Policy{
		RatingWeight:     0.5,
		PopularityWeight: 0.3,
		GenreWeight:      0.2,
		LikedThreshold:   4.0,
	}
}

func (p Policy) Validate() error {
	if p.RatingWeight < 0 || p.PopularityWeight < 0 || p.GenreWeight < 0 {
		return fmt.Errorf("policy: weights must be non-negative")
	}
	sum := p.RatingWeight + p.PopularityWeight + p.GenreWeight
	if math.Abs(sum-1.0) > weightTolerance {
		return fmt.Errorf("policy: weights sum to %v, want 1.0", sum)
	}
	if p.LikedThreshold < 0.5 || p.LikedThreshold > 5.0 {
		return fmt.Errorf("policy: liked threshold %v outside rating scale", p.LikedThreshold)
	}
	return nil
}

// LoadPolicy reads a YAML policy file. Fields left out of the file keep
// their default values.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse policy file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}
