package dto

import "time"

// OptimizeScheduleRequest asks the optimizer to build a proposal for a trainer.
type OptimizeScheduleRequest struct {
	TrainerID  string `json:"trainerId" validate:"required"`
	StartDate  string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	MaxResults int    `json:"maxResults" validate:"omitempty,min=1,max=256"`
}

// RejectionKind identifies one entry of the closed rejection taxonomy.
type RejectionKind string

const (
	RejectionNoTimeSpecified   RejectionKind = "NO_TIME_SPECIFIED"
	RejectionDayOff            RejectionKind = "DAY_OFF"
	RejectionOutsideWorkHours  RejectionKind = "OUTSIDE_WORK_HOURS"
	RejectionDailyLimitReached RejectionKind = "DAILY_LIMIT_REACHED"
	RejectionBookingConflict   RejectionKind = "BOOKING_CONFLICT"
	RejectionProposalConflict  RejectionKind = "PROPOSAL_CONFLICT"
	RejectionBreakBefore       RejectionKind = "INSUFFICIENT_BREAK_BEFORE"
	RejectionBreakAfter        RejectionKind = "INSUFFICIENT_BREAK_AFTER"
)

// RejectionReason is a parameterized rejection template. Kind lets callers and
// tests match structurally; Message is the rendered human-readable form.
type RejectionReason struct {
	Kind    RejectionKind     `json:"kind"`
	Message string            `json:"message"`
	Params  map[string]string `json:"params,omitempty"`
}

// ProposedSession is an accepted placement in an optimization proposal.
type ProposedSession struct {
	RequestID     string    `json:"requestId"`
	ClientID      string    `json:"clientId"`
	SessionType   string    `json:"sessionType"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	MultiSlot     bool      `json:"multiSlot"`
	PriorityScore float64   `json:"priorityScore"`
}

// RejectedRequest is a declined placement carrying exactly one reason.
type RejectedRequest struct {
	RequestID      string          `json:"requestId"`
	ClientID       string          `json:"clientId"`
	SessionType    string          `json:"sessionType"`
	RequestedStart *time.Time      `json:"requestedStart,omitempty"`
	RequestedEnd   *time.Time      `json:"requestedEnd,omitempty"`
	PriorityScore  float64         `json:"priorityScore"`
	Reason         RejectionReason `json:"reason"`
}

// ScheduleStatistics summarises one optimization run.
type ScheduleStatistics struct {
	TotalRequests        int     `json:"totalRequests"`
	ScheduledCount       int     `json:"scheduledCount"`
	UnscheduledCount     int     `json:"unscheduledCount"`
	TotalScheduledHours  float64 `json:"totalScheduledHours"`
	UtilizationRate      float64 `json:"utilizationRate"`
	SchedulingEfficiency float64 `json:"schedulingEfficiency"`
}

// OptimizeScheduleResponse returns the built proposal.
type OptimizeScheduleResponse struct {
	ProposalID string             `json:"proposalId"`
	TrainerID  string             `json:"trainerId"`
	Proposed   []ProposedSession  `json:"proposed"`
	Rejected   []RejectedRequest  `json:"rejected"`
	Statistics ScheduleStatistics `json:"statistics"`
	Message    string             `json:"message"`
}

// ApplyScheduleRequest commits a previously generated proposal: accepted
// entries become confirmed bookings, every decided request gets its terminal
// status.
type ApplyScheduleRequest struct {
	ProposalID string `json:"proposalId" validate:"required"`
}

// ApplyScheduleResponse reports the outcome of applying a proposal.
type ApplyScheduleResponse struct {
	ProposalID string `json:"proposalId"`
	Approved   int    `json:"approved"`
	Rejected   int    `json:"rejected"`
}
