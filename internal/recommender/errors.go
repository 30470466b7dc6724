package recommender

import "errors"

// Sentinel errors for the model lifecycle. Handlers map all three to a
// "service unavailable" response; everything else the engine returns as
// an empty result, never an error.
var (
	ErrDataLoad         = errors.New("recommender: failed to load source tables")
	ErrArtifactNotFound = errors.New("recommender: model artifact not found")
	ErrArtifactCorrupt  = errors.New("recommender: model artifact corrupt")
)
