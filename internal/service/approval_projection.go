package service

import (
	"strings"
	"time"

	"propertyhub/internal/model"
)

// The dashboard projection: pure filtering and aggregation over a fetched
// snapshot. Correctness of the time-window counters depends on the snapshot
// covering the period in question.

// aggregateStats derives the stat tiles from a snapshot. in_review rows are
// legacy undecided state and count as pending so the four buckets always
// sum to total.
func aggregateStats(approvals []model.ApprovalRequest, now time.Time) ApprovalStats {
	stats := ApprovalStats{ByType: make(map[string]int64)}

	weekCutoff := now.AddDate(0, 0, -7)
	for _, a := range approvals {
		stats.Total++
		stats.ByType[a.RequestType]++

		switch a.Status {
		case model.ApprovalApproved:
			stats.Approved++
		case model.ApprovalRejected:
			stats.Rejected++
		case model.ApprovalCancelled:
			stats.Cancelled++
		default:
			stats.Pending++
			if sameDay(a.CreatedAt, now) {
				stats.TodayPending++
			}
			if !a.CreatedAt.Before(weekCutoff) {
				stats.ThisWeekPending++
			}
		}
	}

	return stats
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// searchApprovals returns the requests whose title, description, type or
// status contains the query, case-insensitively. An empty query matches
// everything.
func searchApprovals(approvals []model.ApprovalRequest, query string) []model.ApprovalRequest {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return approvals
	}

	var matched []model.ApprovalRequest
	for _, a := range approvals {
		if strings.Contains(strings.ToLower(a.Title), q) ||
			strings.Contains(strings.ToLower(a.Description), q) ||
			strings.Contains(strings.ToLower(a.RequestType), q) ||
			strings.Contains(strings.ToLower(a.Status), q) {
			matched = append(matched, a)
		}
	}
	return matched
}

func filterByPriority(approvals []model.ApprovalRequest, priority string) []model.ApprovalRequest {
	if priority == "" {
		return approvals
	}
	var matched []model.ApprovalRequest
	for _, a := range approvals {
		if a.Priority == priority {
			matched = append(matched, a)
		}
	}
	return matched
}

func filterByStatus(approvals []model.ApprovalRequest, status string) []model.ApprovalRequest {
	if status == "" {
		return approvals
	}
	var matched []model.ApprovalRequest
	for _, a := range approvals {
		if a.Status == status {
			matched = append(matched, a)
		}
	}
	return matched
}

func filterByType(approvals []model.ApprovalRequest, requestType string) []model.ApprovalRequest {
	if requestType == "" {
		return approvals
	}
	var matched []model.ApprovalRequest
	for _, a := range approvals {
		if a.RequestType == requestType {
			matched = append(matched, a)
		}
	}
	return matched
}
