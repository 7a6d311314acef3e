// Package insights aggregates the claim corpus and asks the AI model for a
// narrative reading of the numbers.
package insights

import (
	"sort"

	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/shopspring/decimal"
)

// Summarize counts claims per status. ApprovalRate is a percentage rounded
// to two places and is 0 for an empty corpus.
func Summarize(claims []models.Claim) models.Statistics {
	stats := models.Statistics{TotalClaims: len(claims)}
	for _, c := range claims {
		switch c.Status {
		case models.StatusPending:
			stats.PendingClaims++
		case models.StatusUnderReview:
			stats.UnderReviewClaims++
		case models.StatusApproved:
			stats.ApprovedClaims++
		case models.StatusRejected:
			stats.RejectedClaims++
		}
	}
	stats.ApprovalRate = approvalRate(stats.ApprovedClaims, stats.TotalClaims)
	return stats
}

func approvalRate(approved, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(approved)).
		Div(decimal.NewFromInt(int64(total))).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// ByState groups claims by location.state. Claims with a blank state share
// one bucket with a nil State, sorted after every named state.
func ByState(claims []models.Claim) []models.RegionSummary {
	groups := make(map[string]*models.RegionSummary)
	for _, c := range claims {
		key := c.Location.State
		g, ok := groups[key]
		if !ok {
			g = &models.RegionSummary{}
			if key != "" {
				state := key
				g.State = &state
			}
			groups[key] = g
		}
		g.TotalClaims++
		switch c.Status {
		case models.StatusPending:
			g.Pending++
		case models.StatusUnderReview:
			g.UnderReview++
		case models.StatusApproved:
			g.Approved++
		case models.StatusRejected:
			g.Rejected++
		}
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == "" || keys[j] == "" {
			return keys[j] == "" && keys[i] != ""
		}
		return keys[i] < keys[j]
	})

	res := make([]models.RegionSummary, 0, len(keys))
	for _, k := range keys {
		res = append(res, *groups[k])
	}
	return res
}
