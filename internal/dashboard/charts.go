package dashboard

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Hamzakourou605/reco-movies/internal/recommender"
)

const (
	chartWidth  = "1100px"
	chartHeight = "560px"
)

func barBase(title, subtitle string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
			Theme:  "light",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{Show: opts.Bool(true), Rotate: 30},
		}),
	)
	return bar
}

// TopMoviesChart plots the best-rated movies by average rating.
func TopMoviesChart(rows []recommender.ScoredMovie) *charts.Bar {
	bar := barBase("Top Rated Movies", fmt.Sprintf("%d movies, ordered by average rating", len(rows)))

	labels := make([]string, len(rows))
	values := make([]opts.BarData, len(rows))
	for i, r := range rows {
		labels[i] = r.Title
		values[i] = opts.BarData{Value: r.AvgRating}
	}
	bar.SetXAxis(labels).AddSeries("avg rating", values)
	return bar
}

// GenreAvgChart plots the mean rating per genre.
func GenreAvgChart(genres []string, stats func(string) recommender.GenreStats) *charts.Bar {
	bar := barBase("Average Rating by Genre", "")

	values := make([]opts.BarData, len(genres))
	for i, g := range genres {
		values[i] = opts.BarData{Value: stats(g).AvgRating}
	}
	bar.SetXAxis(genres).AddSeries("avg rating", values)
	return bar
}

// GenreCountChart shows how the catalog splits across genres.
func GenreCountChart(genres []string, stats func(string) recommender.GenreStats) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  chartWidth,
			Height: chartHeight,
			Theme:  "light",
		}),
		charts.WithTitleOpts(opts.Title{Title: "Movies per Genre"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	items := make([]opts.PieData, len(genres))
	for i, g := range genres {
		items[i] = opts.PieData{Name: g, Value: stats(g).TotalMovies}
	}
	pie.AddSeries("movies", items).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{
			Show:      opts.Bool(true),
			Formatter: "{b}: {c}",
		}))
	return pie
}

// RatingHistogramChart plots how often each rating value was given.
func RatingHistogramChart(buckets []recommender.RatingBucket) *charts.Bar {
	bar := barBase("Rating Distribution", "")

	labels := make([]string, len(buckets))
	values := make([]opts.BarData, len(buckets))
	for i, b := range buckets {
		labels[i] = fmt.Sprintf("%.1f", b.Rating)
		values[i] = opts.BarData{Value: b.Count}
	}
	bar.SetXAxis(labels).AddSeries("ratings", values)
	return bar
}

// RecommendationsChart plots a user's recommendations by composite score.
// The subtitle tells a fallback listing apart from a personalized one.
func RecommendationsChart(rows []recommender.ScoredMovie, userID int, fallback bool) *charts.Bar {
	subtitle := fmt.Sprintf("personalized for user %d", userID)
	if fallback {
		subtitle = fmt.Sprintf("no rating history for user %d, showing global top movies", userID)
	}
	bar := barBase("Recommendations", subtitle)

	labels := make([]string, len(rows))
	values := make([]opts.BarData, len(rows))
	for i, r := range rows {
		labels[i] = r.Title
		if fallback {
			values[i] = opts.BarData{Value: r.AvgRating}
		} else {
			values[i] = opts.BarData{Value: r.Score}
		}
	}
	series := "score"
	if fallback {
		series = "avg rating"
	}
	bar.SetXAxis(labels).AddSeries(series, values)
	return bar
}
