package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vewake/tle-assignment/internal/models"
)

type ratingRange struct {
	min, max int
	label    string
}

var ratingRanges = []ratingRange{
	{800, 999, "800-999"},
	{1000, 1199, "1000-1199"},
	{1200, 1399, "1200-1399"},
	{1400, 1599, "1400-1599"},
	{1600, 1799, "1600-1799"},
	{1800, 1999, "1800-1999"},
	{2000, 2199, "2000-2199"},
	{2200, 2399, "2200-2399"},
	{2400, 2599, "2400-2599"},
	{2600, 3999, "2600+"},
}

const acceptedVerdict = "OK"

// windowCutoff returns the unix second before which entries are dropped.
// days <= 0 means no filtering.
func windowCutoff(days int, now time.Time) int64 {
	if days <= 0 {
		return math.MinInt64
	}
	return now.AddDate(0, 0, -days).Unix()
}

// BuildContestHistory lists contests rated within the window, newest first.
func BuildContestHistory(contests []models.Contest, days int, now time.Time) ([]models.ContestEntry, *models.RatingSummary) {
	cutoff := windowCutoff(days, now)

	entries := make([]models.ContestEntry, 0, len(contests))
	for _, c := range contests {
		if c.RatingUpdateTimeSeconds < cutoff {
			continue
		}
		entries = append(entries, models.ContestEntry{
			ContestID:    c.ContestID,
			ContestName:  c.ContestName,
			Date:         time.Unix(c.RatingUpdateTimeSeconds, 0).UTC(),
			Rank:         c.Rank,
			OldRating:    c.OldRating,
			NewRating:    c.NewRating,
			RatingChange: c.NewRating - c.OldRating,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})

	if len(entries) == 0 {
		return entries, nil
	}

	summary := &models.RatingSummary{
		Current: entries[0].NewRating,
		Highest: entries[0].NewRating,
		Lowest:  entries[0].NewRating,
	}
	for _, e := range entries[1:] {
		if e.NewRating > summary.Highest {
			summary.Highest = e.NewRating
		}
		if e.NewRating < summary.Lowest {
			summary.Lowest = e.NewRating
		}
	}
	summary.TotalChange = entries[0].NewRating - entries[len(entries)-1].OldRating

	return entries, summary
}

// BuildProblemStats summarizes distinct problems solved within the window.
func BuildProblemStats(submissions []models.Submission, days int, now time.Time) models.ProblemStatsResponse {
	cutoff := windowCutoff(days, now)

	stats := models.ProblemStatsResponse{
		Days:               days,
		RatingDistribution: []models.RatingBucket{},
		SubmissionsPerDay:  map[string]int{},
	}

	solved := make(map[string]models.Problem)
	for _, sub := range submissions {
		if sub.CreationTimeSeconds < cutoff {
			continue
		}

		day := time.Unix(sub.CreationTimeSeconds, 0).UTC().Format("2006-01-02")
		stats.SubmissionsPerDay[day]++

		if sub.Verdict != acceptedVerdict {
			continue
		}
		key := fmt.Sprintf("%d-%s", sub.Problem.ContestID, sub.Problem.Index)
		if _, seen := solved[key]; !seen {
			solved[key] = sub.Problem
		}
	}

	stats.TotalSolved = len(solved)

	var rated []int
	for _, p := range solved {
		if p.Rating != nil && *p.Rating > 0 {
			rated = append(rated, *p.Rating)
		}
	}

	if len(rated) > 0 {
		sum := 0
		for _, r := range rated {
			sum += r
			if r > stats.MostDifficultRating {
				stats.MostDifficultRating = r
			}
		}
		stats.AverageRating = int(math.Round(float64(sum) / float64(len(rated))))
	}

	if days > 0 {
		stats.AveragePerDay = math.Round(float64(stats.TotalSolved)/float64(days)*10) / 10
	}

	for _, rr := range ratingRanges {
		count := 0
		for _, r := range rated {
			if r >= rr.min && r <= rr.max {
				count++
			}
		}
		if count > 0 {
			stats.RatingDistribution = append(stats.RatingDistribution, models.RatingBucket{Rating: rr.label, Count: count})
		}
	}

	return stats
}
