package service

import (
	"testing"
	"time"

	"propertyhub/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func buildApproval(requestType, title, status, priority string, createdAt time.Time) model.ApprovalRequest {
	return model.ApprovalRequest{
		ID:          uuid.New(),
		RequestType: requestType,
		Title:       title,
		Status:      status,
		Priority:    priority,
		RequesterID: uuid.New(),
		CreatedAt:   createdAt,
	}
}

func TestAggregateStatsBucketsSumToTotal(t *testing.T) {
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	approvals := []model.ApprovalRequest{
		buildApproval(model.ApprovalReqTypeLease, "a", model.ApprovalPending, model.PriorityNormal, now),
		buildApproval(model.ApprovalReqTypeLease, "b", model.ApprovalApproved, model.PriorityNormal, now.AddDate(0, 0, -1)),
		buildApproval(model.ApprovalReqTypeRefund, "c", model.ApprovalRejected, model.PriorityHigh, now.AddDate(0, 0, -2)),
		buildApproval(model.ApprovalReqTypeRefund, "d", model.ApprovalCancelled, model.PriorityLow, now.AddDate(0, 0, -3)),
		buildApproval(model.ApprovalReqTypeMaintenance, "e", model.ApprovalInReview, model.PriorityUrgent, now.AddDate(0, 0, -10)),
	}

	stats := aggregateStats(approvals, now)

	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, stats.Total, stats.Pending+stats.Approved+stats.Rejected+stats.Cancelled)
	// in_review is undecided, so it lands in the pending bucket.
	assert.Equal(t, int64(2), stats.Pending)
	assert.Equal(t, int64(1), stats.Approved)
	assert.Equal(t, int64(1), stats.Rejected)
	assert.Equal(t, int64(1), stats.Cancelled)
	assert.Equal(t, int64(2), stats.ByType[model.ApprovalReqTypeLease])
	assert.Equal(t, int64(2), stats.ByType[model.ApprovalReqTypeRefund])
}

func TestAggregateStatsTimeWindows(t *testing.T) {
	now := time.Date(2026, 3, 15, 23, 30, 0, 0, time.UTC)

	approvals := []model.ApprovalRequest{
		// Same calendar day, even at 00:01.
		buildApproval(model.ApprovalReqTypeLease, "today early", model.ApprovalPending, model.PriorityNormal,
			time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC)),
		// Yesterday: inside the week window, outside today.
		buildApproval(model.ApprovalReqTypeLease, "yesterday", model.ApprovalPending, model.PriorityNormal,
			now.AddDate(0, 0, -1)),
		// Exactly seven days ago is still within the window.
		buildApproval(model.ApprovalReqTypeLease, "week boundary", model.ApprovalPending, model.PriorityNormal,
			now.AddDate(0, 0, -7)),
		// Eight days ago falls out.
		buildApproval(model.ApprovalReqTypeLease, "stale", model.ApprovalPending, model.PriorityNormal,
			now.AddDate(0, 0, -8)),
		// Decided requests never count toward the pending windows.
		buildApproval(model.ApprovalReqTypeLease, "decided today", model.ApprovalApproved, model.PriorityNormal, now),
	}

	stats := aggregateStats(approvals, now)

	assert.Equal(t, int64(1), stats.TodayPending)
	assert.Equal(t, int64(3), stats.ThisWeekPending)
	assert.Equal(t, int64(4), stats.Pending)
}

func TestAggregateStatsEmpty(t *testing.T) {
	stats := aggregateStats(nil, time.Now())
	assert.Equal(t, int64(0), stats.Total)
	assert.Empty(t, stats.ByType)
}

func searchFixture() []model.ApprovalRequest {
	now := time.Now()
	return []model.ApprovalRequest{
		buildApproval(model.ApprovalReqTypeRefund, "Deposit refund unit 2A", model.ApprovalPending, model.PriorityHigh, now),
		buildApproval(model.ApprovalReqTypeRefund, "Overpayment correction", model.ApprovalApproved, model.PriorityNormal, now),
		buildApproval(model.ApprovalReqTypeLease, "REFUND request from March", model.ApprovalRejected, model.PriorityLow, now),
		buildApproval(model.ApprovalReqTypeLease, "Lease renewal unit 2A", model.ApprovalPending, model.PriorityNormal, now),
		buildApproval(model.ApprovalReqTypeMaintenance, "Broken heater", model.ApprovalPending, model.PriorityUrgent, now),
		buildApproval(model.ApprovalReqTypeTenantRemove, "Remove tenant from unit 5C", model.ApprovalCancelled, model.PriorityLow, now),
		buildApproval(model.ApprovalReqTypePropertyListing, "List new duplex on Main Street", model.ApprovalApproved, model.PriorityNormal, now),
		buildApproval(model.ApprovalReqTypeTenantSuspend, "Noise complaints in unit 5C", model.ApprovalPending, model.PriorityLow, now),
		buildApproval(model.ApprovalReqTypeLeaseTermination, "Early termination of unit 7B", model.ApprovalInReview, model.PriorityHigh, now),
		buildApproval(model.ApprovalReqTypeMaintenance, "Water damage repair estimate", model.ApprovalCancelled, model.PriorityUrgent, now),
	}
}

func TestSearchApprovalsMatchesTitleAndType(t *testing.T) {
	approvals := searchFixture()

	// Two refund_approval rows by type plus one uppercase title match;
	// the other seven rows are near misses.
	matched := searchApprovals(approvals, "refund")
	assert.Len(t, matched, 3)

	matched = searchApprovals(approvals, "unit 2a")
	assert.Len(t, matched, 2)

	// Status text is searchable too.
	matched = searchApprovals(approvals, "rejected")
	assert.Len(t, matched, 1)

	matched = searchApprovals(approvals, "elevator")
	assert.Empty(t, matched)
}

func TestSearchApprovalsEmptyQueryMatchesAll(t *testing.T) {
	approvals := searchFixture()
	assert.Len(t, searchApprovals(approvals, ""), len(approvals))
	assert.Len(t, searchApprovals(approvals, "   "), len(approvals))
}

func TestFilterCombinators(t *testing.T) {
	approvals := searchFixture()

	high := filterByPriority(approvals, model.PriorityHigh)
	assert.Len(t, high, 2)

	pending := filterByStatus(approvals, model.ApprovalPending)
	assert.Len(t, pending, 4)

	leases := filterByType(approvals, model.ApprovalReqTypeLease)
	assert.Len(t, leases, 2)

	// Empty filter values pass everything through.
	assert.Len(t, filterByPriority(approvals, ""), len(approvals))
	assert.Len(t, filterByStatus(approvals, ""), len(approvals))
	assert.Len(t, filterByType(approvals, ""), len(approvals))

	// Chained filters narrow down.
	chained := filterByStatus(filterByPriority(approvals, model.PriorityNormal), model.ApprovalPending)
	assert.Len(t, chained, 1)
	assert.Equal(t, "Lease renewal unit 2A", chained[0].Title)
}
