package service

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/fitdesk/trainer-api/internal/dto"
	"github.com/fitdesk/trainer-api/internal/models"
)

const (
	dateLayout   = "2006-01-02"
	clockLayout  = "15:04"
	eveningStart = 18 * 60 // minutes from midnight
)

// --- Interval model ---

// timeRange is a half-open interval [start, end) over absolute UTC instants.
type timeRange struct {
	start time.Time
	end   time.Time
}

func (r timeRange) overlaps(o timeRange) bool {
	return r.start.Before(o.end) && o.start.Before(r.end)
}

// gapMinutes returns the distance between the nearer endpoints of two
// non-overlapping ranges; negative when the ranges overlap.
func (r timeRange) gapMinutes(o timeRange) float64 {
	if !r.end.After(o.start) {
		return o.start.Sub(r.end).Minutes()
	}
	if !o.end.After(r.start) {
		return r.start.Sub(o.end).Minutes()
	}
	return -1
}

func (r timeRange) within(windowStart, windowEnd time.Time) bool {
	return !r.start.Before(windowStart) && !r.end.After(windowEnd)
}

func (r timeRange) minutes() int {
	return int(r.end.Sub(r.start).Minutes())
}

func dateKey(t time.Time) string {
	return t.Format(dateLayout)
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// --- Conflict index ---

// committedInterval is an occupied slot on the trainer's calendar: a confirmed
// booking or a request accepted earlier in the current run.
type committedInterval struct {
	trainerID string
	requestID string
	slot      timeRange
	existing  bool
}

// conflictIndex keeps per-day collections of committed intervals sorted by
// start time. Daily session counts are small, so linear insertion is fine.
type conflictIndex struct {
	days map[string][]committedInterval
}

func newConflictIndex(bookings []models.Booking) *conflictIndex {
	idx := &conflictIndex{days: make(map[string][]committedInterval)}
	for _, b := range bookings {
		idx.add(committedInterval{
			trainerID: b.TrainerID,
			requestID: b.RequestID,
			slot:      timeRange{start: b.StartTime, end: b.EndTime},
			existing:  true,
		})
	}
	return idx
}

func (idx *conflictIndex) add(iv committedInterval) {
	key := dateKey(iv.slot.start)
	day := idx.days[key]
	pos := sort.Search(len(day), func(i int) bool {
		return day[i].slot.start.After(iv.slot.start)
	})
	day = append(day, committedInterval{})
	copy(day[pos+1:], day[pos:])
	day[pos] = iv
	idx.days[key] = day
}

func (idx *conflictIndex) countOn(date string) int {
	return len(idx.days[date])
}

// conflictsWith returns the first committed interval overlapping the candidate.
func (idx *conflictIndex) conflictsWith(c timeRange) *committedInterval {
	day := idx.days[dateKey(c.start)]
	for i := range day {
		if day[i].slot.overlaps(c) {
			return &day[i]
		}
	}
	return nil
}

// breakViolation returns the adjacent interval closer than minBreak minutes,
// along with whether that neighbor precedes the candidate. The preceding
// neighbor is checked first.
func (idx *conflictIndex) breakViolation(c timeRange, minBreak int) (*committedInterval, bool) {
	if minBreak <= 0 {
		return nil, false
	}
	day := idx.days[dateKey(c.start)]

	var before, after *committedInterval
	for i := range day {
		iv := &day[i]
		if !iv.slot.end.After(c.start) {
			if before == nil || iv.slot.end.After(before.slot.end) {
				before = iv
			}
		}
		if !iv.slot.start.Before(c.end) {
			if after == nil || iv.slot.start.Before(after.slot.start) {
				after = iv
			}
		}
	}

	if before != nil && before.slot.gapMinutes(c) < float64(minBreak) {
		return before, true
	}
	if after != nil && c.gapMinutes(after.slot) < float64(minBreak) {
		return after, false
	}
	return nil, false
}

// --- Scheduling rules (resolved trainer preferences) ---

// schedulingRules is the runtime form of a TrainerPreference row with its
// JSON columns decoded and clock strings parsed to minutes from midnight.
type schedulingRules struct {
	maxSessionsPerDay   int
	minBreakMinutes     int
	preferConsecutive   bool
	workStartMinutes    int
	workEndMinutes      int
	daysOff             map[time.Weekday]bool
	preferredBlocks     map[string]bool
	prioritizeRecurring bool
	prioritizeHighValue *bool
}

func defaultSchedulingRules() schedulingRules {
	return schedulingRules{
		maxSessionsPerDay: 8,
		minBreakMinutes:   15,
		workStartMinutes:  8 * 60,
		workEndMinutes:    18 * 60,
		daysOff:           map[time.Weekday]bool{},
		preferredBlocks: map[string]bool{
			models.TimeBlockMorning:   true,
			models.TimeBlockAfternoon: true,
		},
	}
}

// resolveRules converts a stored preference row into runtime rules. A nil row
// yields the defaults.
func resolveRules(pref *models.TrainerPreference) (schedulingRules, error) {
	rules := defaultSchedulingRules()
	if pref == nil {
		return rules, nil
	}

	if pref.MaxSessionsPerDay > 0 {
		rules.maxSessionsPerDay = pref.MaxSessionsPerDay
	}
	if pref.MinBreakMinutes >= 0 {
		rules.minBreakMinutes = pref.MinBreakMinutes
	}
	rules.preferConsecutive = pref.PreferConsecutive
	rules.prioritizeRecurring = pref.PrioritizeRecurring
	rules.prioritizeHighValue = pref.PrioritizeHighValue

	if pref.WorkStart != "" {
		start, err := parseClock(pref.WorkStart)
		if err != nil {
			return rules, fmt.Errorf("parse work start %q: %w", pref.WorkStart, err)
		}
		rules.workStartMinutes = start
	}
	if pref.WorkEnd != "" {
		end, err := parseClock(pref.WorkEnd)
		if err != nil {
			return rules, fmt.Errorf("parse work end %q: %w", pref.WorkEnd, err)
		}
		rules.workEndMinutes = end
	}
	if rules.workEndMinutes <= rules.workStartMinutes {
		return rules, fmt.Errorf("work end %s is not after work start %s",
			formatClock(rules.workEndMinutes), formatClock(rules.workStartMinutes))
	}

	if len(pref.DaysOff) > 0 {
		var days []int
		if err := json.Unmarshal(pref.DaysOff, &days); err != nil {
			return rules, fmt.Errorf("decode days off: %w", err)
		}
		rules.daysOff = make(map[time.Weekday]bool, len(days))
		for _, d := range days {
			if d < 0 || d > 6 {
				continue
			}
			rules.daysOff[time.Weekday(d)] = true
		}
		if len(rules.daysOff) >= 7 {
			return rules, fmt.Errorf("days off cover the whole week")
		}
	}

	if len(pref.PreferredBlocks) > 0 {
		var blocks []string
		if err := json.Unmarshal(pref.PreferredBlocks, &blocks); err != nil {
			return rules, fmt.Errorf("decode preferred blocks: %w", err)
		}
		if len(blocks) > 0 {
			rules.preferredBlocks = make(map[string]bool, len(blocks))
			for _, b := range blocks {
				rules.preferredBlocks[strings.ToLower(strings.TrimSpace(b))] = true
			}
		}
	}

	return rules, nil
}

func parseClock(raw string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("expected HH:MM")
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	mins, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	if hours < 0 || hours > 24 || mins < 0 || mins > 59 {
		return 0, fmt.Errorf("clock value out of range")
	}
	return hours*60 + mins, nil
}

// evaluate runs the structural checks in their fixed order: day off, work
// hours, daily capacity. The first failing check determines the reason.
func (rules schedulingRules) evaluate(c timeRange, idx *conflictIndex) *dto.RejectionReason {
	if rules.daysOff[c.start.Weekday()] {
		return reasonDayOff(dateKey(c.start))
	}
	if minutesOfDay(c.start) < rules.workStartMinutes || endMinutesOfDay(c) > rules.workEndMinutes {
		return reasonOutsideWorkHours(rules.workStartMinutes, rules.workEndMinutes)
	}
	if idx.countOn(dateKey(c.start)) >= rules.maxSessionsPerDay {
		return reasonDailyLimit(rules.maxSessionsPerDay, dateKey(c.start))
	}
	return nil
}

// endMinutesOfDay treats an end falling exactly on midnight as minute 1440 so
// a session ending at 00:00 the next day is still outside a same-day window.
func endMinutesOfDay(c timeRange) int {
	end := minutesOfDay(c.end)
	if end == 0 && c.end.After(c.start) {
		return 24 * 60
	}
	if !c.end.Truncate(24 * time.Hour).Equal(c.start.Truncate(24 * time.Hour)) {
		return 24 * 60
	}
	return end
}

// --- Placement engine ---

type placementEngine struct {
	rules       schedulingRules
	idx         *conflictIndex
	window      timeRange
	unitMinutes int
}

// optimizationInput is the fully materialized, immutable input of one run.
type optimizationInput struct {
	TrainerID   string
	Window      timeRange
	Requests    []models.BookingRequest
	Rules       schedulingRules
	Bookings    []models.Booking
	Weights     ScoreWeights
	UnitMinutes int
}

type placementResult struct {
	Proposed   []dto.ProposedSession
	Rejected   []dto.RejectedRequest
	Statistics dto.ScheduleStatistics
}

// runPlacement executes one full optimization pass: rank, then single-pass
// greedy placement. Pure function of its input; committing an entry only
// changes feasibility for later, lower-ranked requests.
func runPlacement(input optimizationInput) placementResult {
	ranked := rankRequests(input.Requests, input.Rules, input.Weights)
	engine := &placementEngine{
		rules:       input.Rules,
		idx:         newConflictIndex(input.Bookings),
		window:      input.Window,
		unitMinutes: input.UnitMinutes,
	}

	proposed := make([]dto.ProposedSession, 0, len(ranked))
	rejected := make([]dto.RejectedRequest, 0)

	for _, req := range ranked {
		candidate, reason := engine.resolveCandidate(req)
		if reason == nil {
			reason = engine.checkCandidate(candidate)
		}
		if reason != nil {
			rejected = append(rejected, dto.RejectedRequest{
				RequestID:      req.ID,
				ClientID:       req.ClientID,
				SessionType:    req.SessionType,
				RequestedStart: req.StartTime,
				RequestedEnd:   req.EndTime,
				PriorityScore:  req.PriorityScore,
				Reason:         *reason,
			})
			continue
		}

		engine.idx.add(committedInterval{
			trainerID: req.TrainerID,
			requestID: req.ID,
			slot:      candidate,
		})
		proposed = append(proposed, dto.ProposedSession{
			RequestID:     req.ID,
			ClientID:      req.ClientID,
			SessionType:   req.SessionType,
			StartTime:     candidate.start,
			EndTime:       candidate.end,
			MultiSlot:     engine.unitCount(candidate) > 1,
			PriorityScore: req.PriorityScore,
		})
	}

	return placementResult{
		Proposed:   proposed,
		Rejected:   rejected,
		Statistics: buildStatistics(len(ranked), proposed, input.Rules, input.Window),
	}
}

// resolveCandidate produces the concrete interval to test for a request.
// Explicit windows are used as given; flexible requests are tried against
// each preferred window per planning day until one fits.
func (e *placementEngine) resolveCandidate(req models.BookingRequest) (timeRange, *dto.RejectionReason) {
	if req.DurationMinutes <= 0 {
		panic(fmt.Sprintf("booking request %s has non-positive duration %d", req.ID, req.DurationMinutes))
	}
	duration := time.Duration(req.DurationMinutes) * time.Minute

	if req.StartTime != nil {
		start := req.StartTime.UTC()
		end := start.Add(duration)
		if req.EndTime != nil {
			end = req.EndTime.UTC()
			if !end.After(start) {
				panic(fmt.Sprintf("booking request %s has end %s not after start %s", req.ID, end, start))
			}
		}
		return timeRange{start: start, end: end}, nil
	}

	preferred := decodeWindows(req.PreferredWindows)
	if len(preferred) == 0 {
		return timeRange{}, reasonNoTime()
	}
	avoid := decodeWindows(req.AvoidWindows)
	windows := e.orderByPreferredBlock(preferred)

	var firstFailure *dto.RejectionReason
	for _, day := range e.planningDays(req) {
		for _, w := range windows {
			startMin, err := parseClock(w.Start)
			if err != nil {
				continue
			}
			if startMin >= eveningStart && !req.AllowEvening {
				continue
			}
			candidate := timeRange{
				start: day.Add(time.Duration(startMin) * time.Minute),
				end:   day.Add(time.Duration(startMin)*time.Minute + duration),
			}
			if !candidate.within(e.window.start, e.window.end) {
				continue
			}
			if hitsAvoidWindow(candidate, avoid) {
				continue
			}
			if reason := e.checkCandidate(candidate); reason != nil {
				if firstFailure == nil {
					firstFailure = reason
				}
				continue
			}
			return candidate, nil
		}
	}

	if firstFailure != nil {
		return timeRange{}, firstFailure
	}
	return timeRange{}, reasonNoWindowFits()
}

// planningDays lists the candidate days for a flexible request, excluding
// days off and gated weekend days. With preferConsecutive set, days already
// holding sessions come first so new sessions land next to committed ones
// rather than on empty days.
func (e *placementEngine) planningDays(req models.BookingRequest) []time.Time {
	days := make([]time.Time, 0, 8)
	for day := startOfDay(e.window.start); day.Before(e.window.end); day = day.AddDate(0, 0, 1) {
		if e.rules.daysOff[day.Weekday()] {
			continue
		}
		if isWeekend(day) && !req.AllowWeekend {
			continue
		}
		days = append(days, day)
	}
	if e.rules.preferConsecutive {
		sort.SliceStable(days, func(i, j int) bool {
			return e.idx.countOn(dateKey(days[i])) > e.idx.countOn(dateKey(days[j]))
		})
	}
	return days
}

// orderByPreferredBlock keeps the client's listed window order but moves
// windows starting inside one of the trainer's preferred time blocks ahead
// of the rest. Blocks are a preference, not a constraint: out-of-block
// windows are still tried, last.
func (e *placementEngine) orderByPreferredBlock(windows []models.TimeWindow) []models.TimeWindow {
	if len(e.rules.preferredBlocks) == 0 {
		return windows
	}
	inBlock := make([]models.TimeWindow, 0, len(windows))
	var outBlock []models.TimeWindow
	for _, w := range windows {
		startMin, err := parseClock(w.Start)
		if err != nil || e.rules.preferredBlocks[timeBlockOf(startMin)] {
			inBlock = append(inBlock, w)
			continue
		}
		outBlock = append(outBlock, w)
	}
	return append(inBlock, outBlock...)
}

func timeBlockOf(startMinutes int) string {
	switch {
	case startMinutes < 12*60:
		return models.TimeBlockMorning
	case startMinutes < eveningStart:
		return models.TimeBlockAfternoon
	default:
		return models.TimeBlockEvening
	}
}

// checkCandidate verifies every constituent slot unit of the candidate:
// structural checks first, then direct conflicts, then break-time on either
// side. Nothing is committed here, so a multi-unit candidate either passes
// as a whole or fails with the first failing unit's reason.
func (e *placementEngine) checkCandidate(c timeRange) *dto.RejectionReason {
	for _, unit := range e.splitUnits(c) {
		if reason := e.rules.evaluate(unit, e.idx); reason != nil {
			return reason
		}
		if hit := e.idx.conflictsWith(unit); hit != nil {
			if hit.existing {
				return reasonBookingConflict(hit.slot)
			}
			return reasonProposalConflict(hit.slot)
		}
		if neighbor, precedes := e.idx.breakViolation(unit, e.rules.minBreakMinutes); neighbor != nil {
			if precedes {
				return reasonBreakAfter(e.rules.minBreakMinutes, neighbor.slot.end)
			}
			return reasonBreakBefore(e.rules.minBreakMinutes, neighbor.slot.start)
		}
	}
	return nil
}

func (e *placementEngine) unitCount(c timeRange) int {
	if e.unitMinutes <= 0 {
		return 1
	}
	return (c.minutes() + e.unitMinutes - 1) / e.unitMinutes
}

func (e *placementEngine) splitUnits(c timeRange) []timeRange {
	count := e.unitCount(c)
	if count <= 1 {
		return []timeRange{c}
	}
	units := make([]timeRange, 0, count)
	step := time.Duration(e.unitMinutes) * time.Minute
	for start := c.start; start.Before(c.end); start = start.Add(step) {
		end := start.Add(step)
		if end.After(c.end) {
			end = c.end
		}
		units = append(units, timeRange{start: start, end: end})
	}
	return units
}

func decodeWindows(raw types.JSONText) []models.TimeWindow {
	if len(raw) == 0 {
		return nil
	}
	var windows []models.TimeWindow
	if err := json.Unmarshal(raw, &windows); err != nil {
		return nil
	}
	return windows
}

func hitsAvoidWindow(c timeRange, avoid []models.TimeWindow) bool {
	for _, w := range avoid {
		startMin, err := parseClock(w.Start)
		if err != nil {
			continue
		}
		endMin, err := parseClock(w.End)
		if err != nil || endMin <= startMin {
			continue
		}
		day := startOfDay(c.start)
		blocked := timeRange{
			start: day.Add(time.Duration(startMin) * time.Minute),
			end:   day.Add(time.Duration(endMin) * time.Minute),
		}
		if c.overlaps(blocked) {
			return true
		}
	}
	return false
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// --- Statistics ---

func buildStatistics(total int, proposed []dto.ProposedSession, rules schedulingRules, window timeRange) dto.ScheduleStatistics {
	stats := dto.ScheduleStatistics{
		TotalRequests:    total,
		ScheduledCount:   len(proposed),
		UnscheduledCount: total - len(proposed),
	}

	var scheduledMinutes float64
	for _, p := range proposed {
		scheduledMinutes += p.EndTime.Sub(p.StartTime).Minutes()
	}
	stats.TotalScheduledHours = round2(scheduledMinutes / 60)

	workingDays := 0
	for day := startOfDay(window.start); day.Before(window.end); day = day.AddDate(0, 0, 1) {
		if !rules.daysOff[day.Weekday()] {
			workingDays++
		}
	}
	availableHours := float64(workingDays) * float64(rules.workEndMinutes-rules.workStartMinutes) / 60
	if availableHours > 0 {
		stats.UtilizationRate = round2(stats.TotalScheduledHours / availableHours * 100)
	}
	if total > 0 {
		stats.SchedulingEfficiency = round2(float64(len(proposed)) / float64(total) * 100)
	}
	return stats
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
