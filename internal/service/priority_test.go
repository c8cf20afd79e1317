package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitdesk/trainer-api/internal/models"
)

func TestScoreRequestBaseAndTypeWeights(t *testing.T) {
	rules := defaultSchedulingRules()
	weights := DefaultScoreWeights()

	cases := []struct {
		sessionType string
		want        float64
	}{
		{"personal_training", 5.0},
		{"rehab", 4.9},
		{"assessment", 4.5},
		{"group_session", 4.0},
		{"Personal_Training", 5.0}, // lookup is case-insensitive
		{"unknown", 3.5},
	}
	for _, tc := range cases {
		req := models.BookingRequest{SessionType: tc.sessionType, DurationMinutes: 60}
		assert.InDelta(t, tc.want, scoreRequest(req, rules, weights), 0.001, tc.sessionType)
	}
}

func TestScoreRequestLocationWeights(t *testing.T) {
	rules := defaultSchedulingRules()
	weights := DefaultScoreWeights()

	studio := models.BookingRequest{SessionType: "assessment", LocationType: "studio", DurationMinutes: 60}
	online := models.BookingRequest{SessionType: "assessment", LocationType: "online", DurationMinutes: 60}
	assert.InDelta(t, 5.0, scoreRequest(studio, rules, weights), 0.001)
	assert.InDelta(t, 4.5, scoreRequest(online, rules, weights), 0.001)
}

func TestScoreRequestRecurringGatedByPreference(t *testing.T) {
	weights := DefaultScoreWeights()
	req := models.BookingRequest{SessionType: "assessment", DurationMinutes: 60, IsRecurring: true}

	off := defaultSchedulingRules()
	assert.InDelta(t, 4.5, scoreRequest(req, off, weights), 0.001)

	on := defaultSchedulingRules()
	on.prioritizeRecurring = true
	assert.InDelta(t, 7.5, scoreRequest(req, on, weights), 0.001)
}

func TestScoreRequestDurationTiers(t *testing.T) {
	weights := DefaultScoreWeights()

	// nil high-value flag means the tiers apply
	rules := defaultSchedulingRules()
	cases := []struct {
		minutes int
		want    float64
	}{
		{120, 5.5},
		{90, 5.0},
		{60, 4.5},
		{45, 4.2},
	}
	for _, tc := range cases {
		req := models.BookingRequest{SessionType: "assessment", DurationMinutes: tc.minutes}
		assert.InDelta(t, tc.want, scoreRequest(req, rules, weights), 0.001, "%d minutes", tc.minutes)
	}

	long := models.BookingRequest{SessionType: "assessment", DurationMinutes: 120}

	disabled := false
	rules.prioritizeHighValue = &disabled
	assert.InDelta(t, 4.0, scoreRequest(long, rules, weights), 0.001)

	enabled := true
	rules.prioritizeHighValue = &enabled
	assert.InDelta(t, 5.5, scoreRequest(long, rules, weights), 0.001)
}

func TestScoreRequestSpecialRequestsBonus(t *testing.T) {
	weights := DefaultScoreWeights()
	rules := defaultSchedulingRules()

	plain := models.BookingRequest{SessionType: "assessment", DurationMinutes: 60}
	detailed := models.BookingRequest{SessionType: "assessment", DurationMinutes: 60, SpecialRequests: "needs resistance bands and a low step"}
	brief := models.BookingRequest{SessionType: "assessment", DurationMinutes: 60, SpecialRequests: "bands"}
	blankNote := models.BookingRequest{SessionType: "assessment", DurationMinutes: 60, SpecialRequests: "   "}

	assert.InDelta(t, 6.0, scoreRequest(detailed, rules, weights), 0.001)
	assert.InDelta(t, 5.0, scoreRequest(brief, rules, weights), 0.001)
	assert.InDelta(t, 4.5, scoreRequest(plain, rules, weights), 0.001)
	assert.InDelta(t, 4.5, scoreRequest(blankNote, rules, weights), 0.001)
}

func TestScoreRequestClamped(t *testing.T) {
	rules := defaultSchedulingRules()
	rules.prioritizeRecurring = true

	weights := DefaultScoreWeights()
	weights.TypeWeights = map[string]float64{"personal_training": 5.0}

	maxed := models.BookingRequest{
		SessionType:     "personal_training",
		LocationType:    "studio",
		DurationMinutes: 120,
		IsRecurring:     true,
		SpecialRequests: "post-surgery program",
	}
	assert.InDelta(t, 10.0, scoreRequest(maxed, rules, weights), 0.001)

	weights.Base = 0.2
	weights.TypeWeights = nil
	floor := models.BookingRequest{SessionType: "none", DurationMinutes: 30}
	assert.InDelta(t, 1.0, scoreRequest(floor, rules, weights), 0.001)
}

func TestRankRequestsOrdersByScoreThenStartThenID(t *testing.T) {
	rules := defaultSchedulingRules()
	rules.prioritizeRecurring = true
	weights := DefaultScoreWeights()

	early := at(0, 9, 0)
	late := at(0, 14, 0)

	requests := []models.BookingRequest{
		{ID: "req-flex", SessionType: "assessment", DurationMinutes: 60},
		{ID: "req-late", SessionType: "assessment", DurationMinutes: 60, StartTime: &late},
		{ID: "req-early-b", SessionType: "assessment", DurationMinutes: 60, StartTime: &early},
		{ID: "req-early-a", SessionType: "assessment", DurationMinutes: 60, StartTime: &early},
		{ID: "req-recurring", SessionType: "assessment", DurationMinutes: 60, IsRecurring: true},
	}

	ranked := rankRequests(requests, rules, weights)
	require.Len(t, ranked, 5)

	assert.Equal(t, "req-recurring", ranked[0].ID)
	assert.Equal(t, "req-early-a", ranked[1].ID)
	assert.Equal(t, "req-early-b", ranked[2].ID)
	assert.Equal(t, "req-late", ranked[3].ID)
	assert.Equal(t, "req-flex", ranked[4].ID)
}

func TestRankRequestsRecomputesPresetScores(t *testing.T) {
	requests := []models.BookingRequest{
		{ID: "req-1", SessionType: "assessment", DurationMinutes: 60, PriorityScore: 9.9},
	}
	ranked := rankRequests(requests, defaultSchedulingRules(), DefaultScoreWeights())

	// stale or database-seeded scores never influence placement order
	assert.InDelta(t, 4.5, ranked[0].PriorityScore, 0.001)
}

func TestRankRequestsDoesNotMutateInput(t *testing.T) {
	start := at(0, 9, 0)
	requests := []models.BookingRequest{
		{ID: "req-1", SessionType: "assessment", DurationMinutes: 60, StartTime: &start},
		{ID: "req-2", SessionType: "personal_training", DurationMinutes: 60},
	}
	_ = rankRequests(requests, defaultSchedulingRules(), DefaultScoreWeights())

	assert.Zero(t, requests[0].PriorityScore)
	assert.Equal(t, "req-1", requests[0].ID)
	assert.Equal(t, "req-2", requests[1].ID)
}

func TestRankRequestsStableAcrossRuns(t *testing.T) {
	var start time.Time = at(0, 10, 0)
	requests := []models.BookingRequest{
		{ID: "req-b", SessionType: "assessment", DurationMinutes: 60, StartTime: &start},
		{ID: "req-a", SessionType: "assessment", DurationMinutes: 60, StartTime: &start},
	}
	first := rankRequests(requests, defaultSchedulingRules(), DefaultScoreWeights())
	second := rankRequests(requests, defaultSchedulingRules(), DefaultScoreWeights())
	assert.Equal(t, first, second)
	assert.Equal(t, "req-a", first[0].ID)
}
