package service

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fitdesk/trainer-api/internal/dto"
)

// Rejection reason constructors. Every rejection the engine emits goes
// through one of these so kinds, messages, and params stay consistent.

// reasonNoTime covers a request carrying neither explicit times nor
// preferred windows.
func reasonNoTime() *dto.RejectionReason {
	return &dto.RejectionReason{
		Kind:    dto.RejectionNoTimeSpecified,
		Message: "no start/end time specified",
	}
}

// reasonNoWindowFits covers a flexible request whose preferred windows were
// all filtered out before a concrete candidate could be checked.
func reasonNoWindowFits() *dto.RejectionReason {
	return &dto.RejectionReason{
		Kind:    dto.RejectionNoTimeSpecified,
		Message: "no available time slot matches the preferred windows",
	}
}

func reasonDayOff(date string) *dto.RejectionReason {
	return &dto.RejectionReason{
		Kind:    dto.RejectionDayOff,
		Message: fmt.Sprintf("requested day %s is a day off", date),
		Params:  map[string]string{"date": date},
	}
}

func reasonOutsideWorkHours(startMinutes, endMinutes int) *dto.RejectionReason {
	start := formatClock(startMinutes)
	end := formatClock(endMinutes)
	return &dto.RejectionReason{
		Kind:    dto.RejectionOutsideWorkHours,
		Message: fmt.Sprintf("requested time is outside working hours %s-%s", start, end),
		Params:  map[string]string{"work_start": start, "work_end": end},
	}
}

func reasonDailyLimit(limit int, date string) *dto.RejectionReason {
	return &dto.RejectionReason{
		Kind:    dto.RejectionDailyLimitReached,
		Message: fmt.Sprintf("daily session limit (%d) reached on %s", limit, date),
		Params:  map[string]string{"limit": strconv.Itoa(limit), "date": date},
	}
}

func reasonBookingConflict(slot timeRange) *dto.RejectionReason {
	return &dto.RejectionReason{
		Kind: dto.RejectionBookingConflict,
		Message: fmt.Sprintf("conflicts with an existing booking %s-%s",
			slot.start.Format(clockLayout), slot.end.Format(clockLayout)),
		Params: map[string]string{
			"conflict_start": slot.start.Format(time.RFC3339),
			"conflict_end":   slot.end.Format(time.RFC3339),
		},
	}
}

func reasonProposalConflict(slot timeRange) *dto.RejectionReason {
	return &dto.RejectionReason{
		Kind: dto.RejectionProposalConflict,
		Message: fmt.Sprintf("conflicts with a higher priority session %s-%s",
			slot.start.Format(clockLayout), slot.end.Format(clockLayout)),
		Params: map[string]string{
			"conflict_start": slot.start.Format(time.RFC3339),
			"conflict_end":   slot.end.Format(time.RFC3339),
		},
	}
}

func reasonBreakAfter(minBreak int, neighborEnd time.Time) *dto.RejectionReason {
	return &dto.RejectionReason{
		Kind: dto.RejectionBreakAfter,
		Message: fmt.Sprintf("insufficient break time (%d minutes required) after existing session ending at %s",
			minBreak, neighborEnd.Format(clockLayout)),
		Params: map[string]string{
			"min_break":    strconv.Itoa(minBreak),
			"neighbor_end": neighborEnd.Format(time.RFC3339),
		},
	}
}

func reasonBreakBefore(minBreak int, neighborStart time.Time) *dto.RejectionReason {
	return &dto.RejectionReason{
		Kind: dto.RejectionBreakBefore,
		Message: fmt.Sprintf("insufficient break time (%d minutes required) before existing session starting at %s",
			minBreak, neighborStart.Format(clockLayout)),
		Params: map[string]string{
			"min_break":      strconv.Itoa(minBreak),
			"neighbor_start": neighborStart.Format(time.RFC3339),
		},
	}
}
