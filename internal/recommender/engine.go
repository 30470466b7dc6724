package recommender

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Engine answers every ranking, filtering and personalization query over
// an in-memory copy of the MovieLens tables. Instances are immutable once
// built, so any number of request handlers may share one without locking.
// Retraining builds a fresh instance that callers swap in whole.
type Engine struct {
	policy Policy

	movies  []Movie // sorted by MovieID
	ratings []Rating
	tags    []Tag

	movieIdx   map[int]int // MovieID -> index into movies
	movieStats map[int]MovieStats
	genreStats map[string]GenreStats
	genres     []string // sorted, placeholder excluded
	byUser     map[int][]Rating
	userIDs    []int // sorted distinct user ids
	stats      DatasetStats
	histogram  []RatingBucket
}

// Train builds a ready-to-query engine from a dataset source. Any failure
// to read or validate the source tables is reported as ErrDataLoad.
func Train(src Source, policy Policy) (*Engine, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	tables, err := src.Load()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataLoad, err)
	}
	if tables == nil || len(tables.Movies) == 0 {
		return nil, fmt.Errorf("%w: source returned no movies", ErrDataLoad)
	}

	e := &Engine{
		policy:  policy,
		movies:  append([]Movie(nil), tables.Movies...),
		ratings: append([]Rating(nil), tables.Ratings...),
		tags:    append([]Tag(nil), tables.Tags...),
	}
	sort.Slice(e.movies, func(i, j int) bool { return e.movies[i].MovieID < e.movies[j].MovieID })
	e.buildIndexes()
	e.computeAggregates()
	return e, nil
}

// buildIndexes derives the lookup structures that are not part of the
// persisted artifact.
func (e *Engine) buildIndexes() {
	e.movieIdx = make(map[int]int, len(e.movies))
	for i, m := range e.movies {
		e.movieIdx[m.MovieID] = i
	}

	e.byUser = make(map[int][]Rating)
	for _, r := range e.ratings {
		e.byUser[r.UserID] = append(e.byUser[r.UserID], r)
	}
	e.userIDs = make([]int, 0, len(e.byUser))
	for id := range e.byUser {
		e.userIDs = append(e.userIDs, id)
	}
	sort.Ints(e.userIDs)

	seen := make(map[string]bool)
	e.genres = e.genres[:0]
	for _, m := range e.movies {
		for _, g := range m.Genres {
			if g == NoGenresPlaceholder || seen[g] {
				continue
			}
			seen[g] = true
			e.genres = append(e.genres, g)
		}
	}
	sort.Strings(e.genres)
}

// computeAggregates fills the per-movie stats, per-genre stats, global
// stats and the rating histogram. All iteration is over sorted keys so
// repeated training over the same tables yields identical numbers.
func (e *Engine) computeAggregates() {
	sums := make(map[int]float64, len(e.movies))
	counts := make(map[int]int, len(e.movies))
	var globalSum float64
	bucketCounts := make(map[float64]int)
	for _, r := range e.ratings {
		if _, ok := e.movieIdx[r.MovieID]; !ok {
			continue // dangling reference, tolerated
		}
		sums[r.MovieID] += r.Rating
		counts[r.MovieID]++
		globalSum += r.Rating
		bucketCounts[r.Rating]++
	}

	e.movieStats = make(map[int]MovieStats, len(e.movies))
	totalRatings := 0
	for _, m := range e.movies {
		st := MovieStats{RatingCount: counts[m.MovieID]}
		if st.RatingCount > 0 {
			st.AvgRating = sums[m.MovieID] / float64(st.RatingCount)
		}
		e.movieStats[m.MovieID] = st
		totalRatings += st.RatingCount
	}

	e.genreStats = make(map[string]GenreStats)
	genreSums := make(map[string]float64)
	genreCounts := make(map[string]int)
	for _, m := range e.movies { // sorted by MovieID
		for _, g := range m.Genres {
			gs := e.genreStats[g]
			gs.TotalMovies++
			e.genreStats[g] = gs
			genreSums[g] += sums[m.MovieID]
			genreCounts[g] += counts[m.MovieID]
		}
	}
	for g, gs := range e.genreStats {
		if genreCounts[g] > 0 {
			gs.AvgRating = genreSums[g] / float64(genreCounts[g])
			e.genreStats[g] = gs
		}
	}

	e.stats = DatasetStats{
		TotalMovies:  len(e.movies),
		TotalRatings: totalRatings,
		TotalUsers:   len(e.userIDs),
	}
	if totalRatings > 0 {
		e.stats.AvgRating = globalSum / float64(totalRatings)
	}

	e.histogram = e.histogram[:0]
	values := make([]float64, 0, len(bucketCounts))
	for v := range bucketCounts {
		values = append(values, v)
	}
	sort.Float64s(values)
	for _, v := range values {
		e.histogram = append(e.histogram, RatingBucket{Rating: v, Count: bucketCounts[v]})
	}
}

// Policy returns the scoring constants the engine was built with.
func (e *Engine) Policy() Policy { return e.policy }

// MovieByID looks a movie up in the catalog.
func (e *Engine) MovieByID(id int) (Movie, bool) {
	i, ok := e.movieIdx[id]
	if !ok {
		return Movie{}, false
	}
	return e.movies[i], true
}

// HasUser reports whether the user has any rating history. The API layer
// uses this to tell "no personalization possible" apart from a thin
// result set.
func (e *Engine) HasUser(userID int) bool {
	return len(e.byUser[userID]) > 0
}

func (e *Engine) scored(m Movie) ScoredMovie {
	st := e.movieStats[m.MovieID]
	return ScoredMovie{Movie: m, AvgRating: st.AvgRating, RatingCount: st.RatingCount}
}

// rankByRating orders rows by average rating descending, then rating
// count descending, then MovieID ascending. Movies without ratings always
// sink below rated ones.
func rankByRating(rows []ScoredMovie) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if (a.RatingCount > 0) != (b.RatingCount > 0) {
			return a.RatingCount > 0
		}
		if a.AvgRating != b.AvgRating {
			return a.AvgRating > b.AvgRating
		}
		if a.RatingCount != b.RatingCount {
			return a.RatingCount > b.RatingCount
		}
		return a.MovieID < b.MovieID
	})
}

// rankByScore orders composite-scored rows: score descending, then the
// rating order used everywhere else.
func rankByScore(rows []ScoredMovie) {
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.AvgRating != b.AvgRating {
			return a.AvgRating > b.AvgRating
		}
		if a.RatingCount != b.RatingCount {
			return a.RatingCount > b.RatingCount
		}
		return a.MovieID < b.MovieID
	})
}

func truncate(rows []ScoredMovie, n int) []ScoredMovie {
	if n < len(rows) {
		return rows[:n]
	}
	return rows
}

// TopMovies returns the n best-rated movies in the catalog.
func (e *Engine) TopMovies(n int) []ScoredMovie {
	if n <= 0 {
		return nil
	}
	rows := make([]ScoredMovie, 0, len(e.movies))
	for _, m := range e.movies {
		rows = append(rows, e.scored(m))
	}
	rankByRating(rows)
	return truncate(rows, n)
}

// MoviesByGenre returns the n best-rated movies carrying the exact genre
// tag. An unknown genre yields an empty result.
func (e *Engine) MoviesByGenre(genre string, n int) []ScoredMovie {
	if n <= 0 || genre == "" {
		return nil
	}
	var rows []ScoredMovie
	for _, m := range e.movies {
		if m.HasGenre(genre) {
			rows = append(rows, e.scored(m))
		}
	}
	rankByRating(rows)
	return truncate(rows, n)
}

// UserRatings returns up to n movies the user has rated, best-rated
// first, most recent first at equal rating. An unknown user yields an
// empty result.
func (e *Engine) UserRatings(userID, n int) []UserMovie {
	if n <= 0 {
		return nil
	}
	history := e.byUser[userID]
	rows := make([]UserMovie, 0, len(history))
	for _, r := range history {
		m, ok := e.MovieByID(r.MovieID)
		if !ok {
			continue
		}
		rows = append(rows, UserMovie{Movie: m, Rating: r.Rating, Timestamp: r.Timestamp})
	}
	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Rating != b.Rating {
			return a.Rating > b.Rating
		}
		if a.Timestamp != b.Timestamp {
			return a.Timestamp > b.Timestamp
		}
		return a.MovieID < b.MovieID
	})
	if n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// preferredGenres derives the genres of every movie the user rated at or
// above the liked threshold, falling back to the single highest-rated
// movie when nothing clears it.
func (e *Engine) preferredGenres(history []Rating) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(movieID int) {
		m, ok := e.MovieByID(movieID)
		if !ok {
			return
		}
		for _, g := range m.Genres {
			if !seen[g] {
				seen[g] = true
				out = append(out, g)
			}
		}
	}

	for _, r := range history {
		if r.Rating >= e.policy.LikedThreshold {
			add(r.MovieID)
		}
	}
	if len(out) == 0 {
		best := history[0]
		for _, r := range history[1:] {
			if r.Rating > best.Rating ||
				(r.Rating == best.Rating && r.Timestamp > best.Timestamp) ||
				(r.Rating == best.Rating && r.Timestamp == best.Timestamp && r.MovieID < best.MovieID) {
				best = r
			}
		}
		add(best.MovieID)
	}
	sort.Strings(out)
	return out
}

// RecommendationsByRatings personalizes recommendations from the user's
// own history. A user without history gets an empty result; the caller
// decides whether to fall back to the global top list.
func (e *Engine) RecommendationsByRatings(userID, n int) []ScoredMovie {
	if n <= 0 {
		return nil
	}
	history := e.byUser[userID]
	if len(history) == 0 {
		return nil
	}
	preferred := e.preferredGenres(history)
	if len(preferred) == 0 {
		return nil
	}

	rated := make(map[int]bool, len(history))
	for _, r := range history {
		rated[r.MovieID] = true
	}

	var cands []ScoredMovie
	for _, m := range e.movies {
		if rated[m.MovieID] {
			continue // never re-recommend watched content
		}
		if countMatches(m.Genres, preferred) > 0 {
			cands = append(cands, e.scored(m))
		}
	}
	e.applyCompositeScore(cands, preferred)
	rankByScore(cands)
	return truncate(cands, n)
}

// RecommendByGenres ranks every movie matching at least one of the
// requested genres by the composite score. Unknown genres are dropped
// from the request; when none remain the result is empty.
func (e *Engine) RecommendByGenres(genres []string, n int) []ScoredMovie {
	if n <= 0 {
		return nil
	}
	known := e.knownGenres(genres)
	if len(known) == 0 {
		return nil
	}

	var cands []ScoredMovie
	for _, m := range e.movies {
		if countMatches(m.Genres, known) > 0 {
			cands = append(cands, e.scored(m))
		}
	}
	e.applyCompositeScore(cands, known)
	rankByScore(cands)
	return truncate(cands, n)
}

// knownGenres filters a requested genre list down to distinct tags that
// exist in the catalog, in sorted order.
func (e *Engine) knownGenres(genres []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, g := range genres {
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		if _, ok := e.genreStats[g]; ok {
			out = append(out, g)
		}
	}
	sort.Strings(out)
	return out
}

func countMatches(movieGenres, requested []string) int {
	n := 0
	for _, g := range movieGenres {
		for _, r := range requested {
			if g == r {
				n++
				break
			}
		}
	}
	return n
}

// applyCompositeScore fills Score on every candidate:
//
//	score = w1*normRating + w2*normPopularity + w3*genreMatch
//
// normRating is avg/5 clamped to [0,1]; normPopularity is
// log(1+count)/log(1+maxCount) over the candidate set; genreMatch is the
// fraction of requested genres the movie carries. With the weights
// summing to 1 the score always lands in [0,1].
func (e *Engine) applyCompositeScore(cands []ScoredMovie, requested []string) {
	maxCount := 0
	for _, c := range cands {
		if c.RatingCount > maxCount {
			maxCount = c.RatingCount
		}
	}
	denom := math.Log1p(float64(maxCount))
	for i := range cands {
		c := &cands[i]
		nr := c.AvgRating / 5.0
		if nr < 0 {
			nr = 0
		} else if nr > 1 {
			nr = 1
		}
		np := 0.0
		if denom > 0 {
			np = math.Log1p(float64(c.RatingCount)) / denom
		}
		match := float64(countMatches(c.Genres, requested)) / float64(len(requested))
		c.Score = e.policy.RatingWeight*nr +
			e.policy.PopularityWeight*np +
			e.policy.GenreWeight*match
	}
}

// AllGenres returns every distinct genre tag in the catalog, sorted.
func (e *Engine) AllGenres() []string {
	return append([]string(nil), e.genres...)
}

// StatsByGenre returns the aggregates for one genre. A genre with no
// movies yields the zero value, not an error.
func (e *Engine) StatsByGenre(genre string) GenreStats {
	return e.genreStats[genre]
}

// Stats returns the global dataset figures.
func (e *Engine) Stats() DatasetStats { return e.stats }

// UserCount returns the number of distinct users with ratings.
func (e *Engine) UserCount() int { return len(e.userIDs) }

// UserIDs returns up to n user ids in ascending order.
func (e *Engine) UserIDs(n int) []int {
	if n <= 0 {
		return nil
	}
	if n > len(e.userIDs) {
		n = len(e.userIDs)
	}
	return append([]int(nil), e.userIDs[:n]...)
}

// RatingHistogram returns how often each rating value was given,
// ascending by rating value.
func (e *Engine) RatingHistogram() []RatingBucket {
	return append([]RatingBucket(nil), e.histogram...)
}

// SearchByTitle returns catalog movies whose title contains the query,
// case-insensitively, in MovieID order.
func (e *Engine) SearchByTitle(query string) []Movie {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var out []Movie
	for _, m := range e.movies {
		if strings.Contains(strings.ToLower(m.Title), query) {
			out = append(out, m)
		}
	}
	return out
}

// SimilarToMovie ranks movies sharing at least one genre with the seed
// movie by the composite score, seed excluded. An unknown seed yields an
// empty result.
func (e *Engine) SimilarToMovie(movieID, n int) []ScoredMovie {
	if n <= 0 {
		return nil
	}
	seed, ok := e.MovieByID(movieID)
	if !ok || len(seed.Genres) == 0 {
		return nil
	}
	var cands []ScoredMovie
	for _, m := range e.movies {
		if m.MovieID == movieID {
			continue
		}
		if countMatches(m.Genres, seed.Genres) > 0 {
			cands = append(cands, e.scored(m))
		}
	}
	e.applyCompositeScore(cands, seed.Genres)
	rankByScore(cands)
	return truncate(cands, n)
}
