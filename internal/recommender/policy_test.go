package recommender

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())

	sum := p.RatingWeight + p.PopularityWeight + p.GenreWeight
	assert.InDelta(t, 1.0, sum, weightTolerance)
	assert.Equal(t, 4.0, p.LikedThreshold)
}

func TestPolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Policy)
		wantErr bool
	}{
		{"default", func(*Policy) {}, false},
		{"weights off by a little", func(p *Policy) { p.GenreWeight = 0.3 }, true},
		{"negative weight", func(p *Policy) { p.RatingWeight = -0.1; p.PopularityWeight = 0.9; p.GenreWeight = 0.2 }, true},
		{"threshold below scale", func(p *Policy) { p.LikedThreshold = 0.0 }, true},
		{"threshold above scale", func(p *Policy) { p.LikedThreshold = 5.5 }, true},
		{"rebalanced weights", func(p *Policy) { p.RatingWeight = 0.6; p.PopularityWeight = 0.2; p.GenreWeight = 0.2 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadPolicy(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"rating_weight: 0.4\npopularity_weight: 0.4\ngenre_weight: 0.2\nliked_threshold: 3.5\n"), 0o644))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, 0.4, p.RatingWeight)
	assert.Equal(t, 0.4, p.PopularityWeight)
	assert.Equal(t, 0.2, p.GenreWeight)
	assert.Equal(t, 3.5, p.LikedThreshold)
}

func TestLoadPolicyPartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("liked_threshold: 4.5\n"), 0o644))

	p, err := LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, 4.5, p.LikedThreshold)
	assert.Equal(t, DefaultPolicy().RatingWeight, p.RatingWeight)
}

func TestLoadPolicyErrors(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("rating_weight: [not a number"), 0o644))
	_, err = LoadPolicy(bad)
	assert.Error(t, err)

	unbalanced := filepath.Join(dir, "unbalanced.yaml")
	require.NoError(t, os.WriteFile(unbalanced, []byte("rating_weight: 0.9\n"), 0o644))
	_, err = LoadPolicy(unbalanced)
	assert.Error(t, err)
}
