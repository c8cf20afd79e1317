package service

import (
	"sort"
	"strings"

	"github.com/fitdesk/trainer-api/internal/models"
)

// ScoreWeights are the tunable inputs of the priority score. Type and
// location tables come from configuration so new session kinds can be
// weighted without a code change.
type ScoreWeights struct {
	Base             float64
	Recurring        float64
	DurationTiers    []DurationTier
	SpecialDetailed  float64
	SpecialBrief     float64
	SpecialDetailMin int
	TypeWeights      map[string]float64
	LocationWeights  map[string]float64
	Floor            float64
	Ceiling          float64
}

// DurationTier awards a bonus to requests at least MinMinutes long. Tiers
// are evaluated in order and the first match wins.
type DurationTier struct {
	MinMinutes int
	Bonus      float64
}

func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Base:      3.0,
		Recurring: 3.0,
		DurationTiers: []DurationTier{
			{MinMinutes: 120, Bonus: 1.5},
			{MinMinutes: 90, Bonus: 1.0},
			{MinMinutes: 60, Bonus: 0.5},
			{MinMinutes: 0, Bonus: 0.2},
		},
		SpecialDetailed:  1.5,
		SpecialBrief:     0.5,
		SpecialDetailMin: 20,
		TypeWeights: map[string]float64{
			"personal_training": 1.5,
			"rehab":             1.4,
			"assessment":        1.0,
			"group_session":     0.5,
		},
		LocationWeights: map[string]float64{
			"studio":  0.5,
			"gym":     0.3,
			"online":  0.0,
			"outdoor": 0.2,
		},
		Floor:   1.0,
		Ceiling: 10.0,
	}
}

// scoreRequest computes the additive priority score for one request. The
// recurring term only applies when the trainer opted into it; the duration
// tiers apply unconditionally unless the trainer's high-value flag is
// explicitly false. Longer special-request notes earn the larger bonus.
func scoreRequest(req models.BookingRequest, rules schedulingRules, w ScoreWeights) float64 {
	score := w.Base

	if req.IsRecurring && rules.prioritizeRecurring {
		score += w.Recurring
	}
	if weight, ok := w.TypeWeights[strings.ToLower(req.SessionType)]; ok {
		score += weight
	}
	if weight, ok := w.LocationWeights[strings.ToLower(req.LocationType)]; ok {
		score += weight
	}
	if rules.prioritizeHighValue == nil || *rules.prioritizeHighValue {
		for _, tier := range w.DurationTiers {
			if req.DurationMinutes >= tier.MinMinutes {
				score += tier.Bonus
				break
			}
		}
	}
	note := strings.TrimSpace(req.SpecialRequests)
	switch {
	case len(note) >= w.SpecialDetailMin:
		score += w.SpecialDetailed
	case note != "":
		score += w.SpecialBrief
	}

	if score < w.Floor {
		score = w.Floor
	}
	if score > w.Ceiling {
		score = w.Ceiling
	}
	return score
}

// rankRequests scores every request and returns a new slice ordered for
// placement: score descending, then earliest requested start (flexible
// requests last), then request ID. The ordering is total, so equal inputs
// always produce the same schedule.
func rankRequests(requests []models.BookingRequest, rules schedulingRules, w ScoreWeights) []models.BookingRequest {
	ranked := make([]models.BookingRequest, len(requests))
	copy(ranked, requests)
	for i := range ranked {
		ranked[i].PriorityScore = scoreRequest(ranked[i], rules, w)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.PriorityScore != b.PriorityScore {
			return a.PriorityScore > b.PriorityScore
		}
		switch {
		case a.StartTime != nil && b.StartTime == nil:
			return true
		case a.StartTime == nil && b.StartTime != nil:
			return false
		case a.StartTime != nil && b.StartTime != nil:
			if !a.StartTime.Equal(*b.StartTime) {
				return a.StartTime.Before(*b.StartTime)
			}
		}
		return a.ID < b.ID
	})
	return ranked
}
