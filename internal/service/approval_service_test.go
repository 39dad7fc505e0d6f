package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"propertyhub/internal/authz"
	"propertyhub/internal/model"
	"propertyhub/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- In-memory fakes ---

// fakeApprovalRepo mirrors the conditional-update semantics of the real
// repository: ApplyDecision only succeeds while the stored row is pending.
type fakeApprovalRepo struct {
	rows map[uuid.UUID]*model.ApprovalRequest
}

func newFakeApprovalRepo() *fakeApprovalRepo {
	return &fakeApprovalRepo{rows: make(map[uuid.UUID]*model.ApprovalRequest)}
}

func (f *fakeApprovalRepo) Create(_ context.Context, req *model.ApprovalRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	clone := *req
	f.rows[req.ID] = &clone
	return nil
}

func (f *fakeApprovalRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	clone := *row
	return &clone, nil
}

func (f *fakeApprovalRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeApprovalRepo) List(_ context.Context, filter repository.ApprovalFilter) ([]model.ApprovalRequest, int64, error) {
	var out []model.ApprovalRequest
	for _, row := range f.rows {
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		if filter.RequestType != "" && row.RequestType != filter.RequestType {
			continue
		}
		out = append(out, *row)
	}
	return out, int64(len(out)), nil
}

func (f *fakeApprovalRepo) ListAll(_ context.Context) ([]model.ApprovalRequest, error) {
	var out []model.ApprovalRequest
	for _, row := range f.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeApprovalRepo) ApplyDecision(_ context.Context, id uuid.UUID, d repository.Decision) (bool, error) {
	row, ok := f.rows[id]
	if !ok || row.Status != model.ApprovalPending {
		return false, nil
	}
	row.Status = d.Status
	reviewedBy := d.ReviewedBy
	reviewedAt := d.ReviewedAt
	row.ReviewedBy = &reviewedBy
	row.ReviewedAt = &reviewedAt
	if d.Notes != "" {
		row.Notes = d.Notes
	}
	return true, nil
}

func (f *fakeApprovalRepo) CountPending(_ context.Context) (int64, error) {
	var count int64
	for _, row := range f.rows {
		if row.Status == model.ApprovalPending || row.Status == model.ApprovalInReview {
			count++
		}
	}
	return count, nil
}

type fakeTenantRepo struct {
	statuses map[uuid.UUID]string
}

func newFakeTenantRepo() *fakeTenantRepo {
	return &fakeTenantRepo{statuses: make(map[uuid.UUID]string)}
}

func (f *fakeTenantRepo) Create(_ context.Context, t *model.Tenant) error { return nil }
func (f *fakeTenantRepo) Update(_ context.Context, t *model.Tenant) error { return nil }
func (f *fakeTenantRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Tenant, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeTenantRepo) List(_ context.Context, _ *uuid.UUID, _ string, _, _ int) ([]model.Tenant, int64, error) {
	return nil, 0, nil
}
func (f *fakeTenantRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	f.statuses[id] = status
	return nil
}
func (f *fakeTenantRepo) CountByStatus(_ context.Context, _ string) (int64, error) { return 0, nil }

type fakeMaintenanceRepo struct {
	statuses map[uuid.UUID]string
}

func newFakeMaintenanceRepo() *fakeMaintenanceRepo {
	return &fakeMaintenanceRepo{statuses: make(map[uuid.UUID]string)}
}

func (f *fakeMaintenanceRepo) Create(_ context.Context, r *model.MaintenanceRequest) error { return nil }
func (f *fakeMaintenanceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.MaintenanceRequest, error) {
	return nil, errors.New("not implemented")
}
func (f *fakeMaintenanceRepo) List(_ context.Context, _ *uuid.UUID, _ string, _, _ int) ([]model.MaintenanceRequest, int64, error) {
	return nil, 0, nil
}
func (f *fakeMaintenanceRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	f.statuses[id] = status
	return nil
}
func (f *fakeMaintenanceRepo) Assign(_ context.Context, _, _ uuid.UUID) error { return nil }

type fakePaymentRepo struct {
	created []model.Payment
}

func (f *fakePaymentRepo) Create(_ context.Context, p *model.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	f.created = append(f.created, *p)
	return nil
}
func (f *fakePaymentRepo) FindByID(_ context.Context, _ uuid.UUID) (*model.Payment, error) {
	return nil, errors.New("not implemented")
}
func (f *fakePaymentRepo) List(_ context.Context, _ *uuid.UUID, _ string, _, _ int) ([]model.Payment, int64, error) {
	return nil, 0, nil
}
func (f *fakePaymentRepo) SumByType(_ context.Context, _ string, _, _ time.Time) (decimal.Decimal, error) {
	return decimal.Zero, nil
}
func (f *fakePaymentRepo) NextReference(_ context.Context) (string, error) {
	return "PAY-20260831-00001", nil
}

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (f *fakeAuditRepo) Create(_ context.Context, e *model.AuditLog) error {
	f.entries = append(f.entries, *e)
	return nil
}
func (f *fakeAuditRepo) List(_ context.Context, _ string, _, _ int) ([]model.AuditLog, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

// fakeTxManager runs the function directly; the fakes have no transactions.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- Fixture ---

type approvalFixture struct {
	svc         ApprovalService
	approvals   *fakeApprovalRepo
	tenants     *fakeTenantRepo
	maintenance *fakeMaintenanceRepo
	payments    *fakePaymentRepo
	audits      *fakeAuditRepo
	reviewer    Actor
	submitter   Actor
}

func newApprovalFixture(t *testing.T) *approvalFixture {
	t.Helper()

	approvals := newFakeApprovalRepo()
	tenants := newFakeTenantRepo()
	maintenance := newFakeMaintenanceRepo()
	payments := &fakePaymentRepo{}
	audits := &fakeAuditRepo{}

	return &approvalFixture{
		svc:         NewApprovalService(approvals, tenants, maintenance, payments, audits, fakeTxManager{}, nil),
		approvals:   approvals,
		tenants:     tenants,
		maintenance: maintenance,
		payments:    payments,
		audits:      audits,
		reviewer:    Actor{UserID: uuid.New(), Role: authz.RoleSuperAdmin},
		submitter:   Actor{UserID: uuid.New(), Role: authz.RoleTenant},
	}
}

func (fx *approvalFixture) seedPending(t *testing.T, requestType string, tenantID *uuid.UUID) uuid.UUID {
	t.Helper()
	req := &model.ApprovalRequest{
		RequestType: requestType,
		Title:       "seeded " + requestType,
		Priority:    model.PriorityNormal,
		Status:      model.ApprovalPending,
		RequesterID: fx.submitter.UserID,
		TenantID:    tenantID,
	}
	require.NoError(t, fx.approvals.Create(context.Background(), req))
	return req.ID
}

// --- Tests ---

func TestCreateForcesPendingAndRequester(t *testing.T) {
	fx := newApprovalFixture(t)

	resp, err := fx.svc.Create(context.Background(), fx.submitter, CreateApprovalRequestDTO{
		RequestType: model.ApprovalReqTypeLease,
		Title:       "Lease application unit 4B",
		Metadata:    map[string]interface{}{"status": "approved", "requester_id": uuid.NewString()},
	})
	require.NoError(t, err)

	// Caller-supplied status/requester live only in metadata; the row
	// itself is pending and attributed to the acting identity.
	assert.Equal(t, model.ApprovalPending, resp.Status)
	assert.Equal(t, fx.submitter.UserID.String(), resp.RequesterID)
	assert.Nil(t, resp.ReviewedBy)
	assert.Nil(t, resp.ReviewedAt)
	assert.Equal(t, model.PriorityNormal, resp.Priority)

	require.Len(t, fx.audits.entries, 1)
	assert.Equal(t, model.ActionCreateApprovalRequest, fx.audits.entries[0].Action)
}

func TestCreateDeniedForGuest(t *testing.T) {
	fx := newApprovalFixture(t)

	_, err := fx.svc.Create(context.Background(), Actor{UserID: uuid.New(), Role: authz.RoleGuest}, CreateApprovalRequestDTO{
		RequestType: model.ApprovalReqTypeLease,
		Title:       "should not exist",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCreateRejectsMalformedReferenceIDs(t *testing.T) {
	fx := newApprovalFixture(t)

	_, err := fx.svc.Create(context.Background(), fx.submitter, CreateApprovalRequestDTO{
		RequestType: model.ApprovalReqTypeLease,
		Title:       "bad property reference",
		PropertyID:  "not-a-uuid",
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	_, err = fx.svc.Create(context.Background(), fx.submitter, CreateApprovalRequestDTO{
		RequestType: model.ApprovalReqTypeTenantSuspend,
		Title:       "bad tenant reference",
		TenantID:    "12345",
	})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	// Nothing is persisted when validation fails.
	require.Empty(t, fx.approvals.rows)
}

func TestApproveSetsReviewerFields(t *testing.T) {
	fx := newApprovalFixture(t)
	tenantID := uuid.New()
	id := fx.seedPending(t, model.ApprovalReqTypeLease, &tenantID)

	resp, err := fx.svc.Approve(context.Background(), fx.reviewer, id.String(), "looks good")
	require.NoError(t, err)

	assert.Equal(t, model.ApprovalApproved, resp.Status)
	require.NotNil(t, resp.ReviewedBy)
	assert.Equal(t, fx.reviewer.UserID.String(), *resp.ReviewedBy)
	assert.NotNil(t, resp.ReviewedAt)
	assert.Equal(t, "looks good", resp.Notes)

	// Side effect: the lease tenant is activated.
	assert.Equal(t, model.TenantStatusActive, fx.tenants.statuses[tenantID])
}

func TestApproveThenRejectIsNoOp(t *testing.T) {
	fx := newApprovalFixture(t)
	tenantID := uuid.New()
	id := fx.seedPending(t, model.ApprovalReqTypeLease, &tenantID)

	_, err := fx.svc.Approve(context.Background(), fx.reviewer, id.String(), "")
	require.NoError(t, err)

	_, err = fx.svc.Reject(context.Background(), fx.reviewer, id.String(), "changed my mind")
	assert.ErrorIs(t, err, ErrAlreadyDecided)

	stored, err := fx.approvals.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, stored.Status)
}

func TestDecideDeniedWithoutManageApprovals(t *testing.T) {
	fx := newApprovalFixture(t)
	id := fx.seedPending(t, model.ApprovalReqTypeTenantSuspend, nil)

	_, err := fx.svc.Approve(context.Background(), fx.submitter, id.String(), "")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	stored, findErr := fx.approvals.FindByID(context.Background(), id)
	require.NoError(t, findErr)
	assert.Equal(t, model.ApprovalPending, stored.Status)
}

func TestDecideUnknownIDIsNotFound(t *testing.T) {
	fx := newApprovalFixture(t)

	_, err := fx.svc.Approve(context.Background(), fx.reviewer, uuid.NewString(), "")
	assert.ErrorIs(t, err, ErrApprovalNotFound)
}

func TestRejectMaintenanceClosesRequest(t *testing.T) {
	fx := newApprovalFixture(t)
	maintID := uuid.New()

	req := &model.ApprovalRequest{
		RequestType: model.ApprovalReqTypeMaintenance,
		Title:       "Boiler replacement",
		Status:      model.ApprovalPending,
		RequesterID: fx.submitter.UserID,
		Metadata:    mustJSON(t, map[string]string{"maintenance_request_id": maintID.String()}),
	}
	require.NoError(t, fx.approvals.Create(context.Background(), req))

	_, err := fx.svc.Reject(context.Background(), fx.reviewer, req.ID.String(), "too expensive")
	require.NoError(t, err)

	assert.Equal(t, model.MaintenanceStatusRejected, fx.maintenance.statuses[maintID])
}

func TestApproveRefundCreatesNegativePayment(t *testing.T) {
	fx := newApprovalFixture(t)
	tenantID := uuid.New()
	propertyID := uuid.New()

	req := &model.ApprovalRequest{
		RequestType: model.ApprovalReqTypeRefund,
		Title:       "Deposit refund",
		Status:      model.ApprovalPending,
		RequesterID: fx.submitter.UserID,
		TenantID:    &tenantID,
		PropertyID:  &propertyID,
		Metadata:    mustJSON(t, map[string]string{"amount": "450.00", "reason": "move-out"}),
	}
	require.NoError(t, fx.approvals.Create(context.Background(), req))

	_, err := fx.svc.Approve(context.Background(), fx.reviewer, req.ID.String(), "")
	require.NoError(t, err)

	require.Len(t, fx.payments.created, 1)
	payment := fx.payments.created[0]
	assert.Equal(t, model.PaymentTypeRefund, payment.PaymentType)
	assert.True(t, payment.Amount.Equal(decimal.RequireFromString("-450.00")), "refunds flow out, amount %s", payment.Amount)
	assert.Equal(t, tenantID, payment.TenantID)
}

func TestCancelOnlyBySubmitterWhilePending(t *testing.T) {
	fx := newApprovalFixture(t)
	id := fx.seedPending(t, model.ApprovalReqTypeLease, nil)

	_, err := fx.svc.Cancel(context.Background(), fx.reviewer, id.String())
	assert.ErrorIs(t, err, ErrNotRequester)

	resp, err := fx.svc.Cancel(context.Background(), fx.submitter, id.String())
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalCancelled, resp.Status)

	// Cancelled is terminal.
	_, err = fx.svc.Cancel(context.Background(), fx.submitter, id.String())
	assert.ErrorIs(t, err, ErrAlreadyDecided)
	_, err = fx.svc.Approve(context.Background(), fx.reviewer, id.String(), "")
	assert.ErrorIs(t, err, ErrAlreadyDecided)
}

func TestBulkProcessSkipsDecided(t *testing.T) {
	fx := newApprovalFixture(t)
	tenantA := uuid.New()
	a := fx.seedPending(t, model.ApprovalReqTypeLease, &tenantA)
	b := fx.seedPending(t, model.ApprovalReqTypeTenantSuspend, nil)

	// b is decided up front.
	tenantB := uuid.New()
	fx.approvals.rows[b].TenantID = &tenantB
	_, err := fx.svc.Approve(context.Background(), fx.reviewer, b.String(), "")
	require.NoError(t, err)

	statsBefore, err := fx.svc.Stats(context.Background())
	require.NoError(t, err)

	result, err := fx.svc.BulkProcess(context.Background(), fx.reviewer, []string{a.String(), b.String()}, "approve", "")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, []string{b.String()}, result.Skipped)

	statsAfter, err := fx.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, statsBefore.Approved+1, statsAfter.Approved, "exactly one new approval")
	assert.Equal(t, statsBefore.Pending-1, statsAfter.Pending)
}

func TestBulkProcessUnknownAction(t *testing.T) {
	fx := newApprovalFixture(t)
	_, err := fx.svc.BulkProcess(context.Background(), fx.reviewer, []string{uuid.NewString()}, "escalate", "")
	assert.Error(t, err)
}

func TestStatsInvariant(t *testing.T) {
	fx := newApprovalFixture(t)
	tenantID := uuid.New()

	a := fx.seedPending(t, model.ApprovalReqTypeLease, &tenantID)
	fx.seedPending(t, model.ApprovalReqTypeLease, nil)
	c := fx.seedPending(t, model.ApprovalReqTypeTenantRemove, &tenantID)
	d := fx.seedPending(t, model.ApprovalReqTypeTenantSuspend, &tenantID)

	_, err := fx.svc.Approve(context.Background(), fx.reviewer, a.String(), "")
	require.NoError(t, err)
	_, err = fx.svc.Reject(context.Background(), fx.reviewer, c.String(), "")
	require.NoError(t, err)
	_, err = fx.svc.Cancel(context.Background(), fx.submitter, d.String())
	require.NoError(t, err)

	stats, err := fx.svc.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, stats.Total, stats.Pending+stats.Approved+stats.Rejected+stats.Cancelled)
	assert.Equal(t, int64(4), stats.Total)
	assert.Equal(t, int64(1), stats.Pending)
	assert.Equal(t, int64(2), stats.ByType[model.ApprovalReqTypeLease])

	pending, err := fx.svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats.Pending, pending)
}

func TestPendingCountIncludesInReview(t *testing.T) {
	fx := newApprovalFixture(t)

	fx.seedPending(t, model.ApprovalReqTypeLease, nil)
	require.NoError(t, fx.approvals.Create(context.Background(), &model.ApprovalRequest{
		RequestType: model.ApprovalReqTypeMaintenance,
		Title:       "legacy triage row",
		Priority:    model.PriorityNormal,
		Status:      model.ApprovalInReview,
		RequesterID: fx.submitter.UserID,
	}))

	// The badge count and the stats tile must agree on what is undecided.
	stats, err := fx.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Pending)

	pending, err := fx.svc.PendingCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats.Pending, pending)
}

func TestGetByIDNotFound(t *testing.T) {
	fx := newApprovalFixture(t)

	resp, err := fx.svc.GetByID(context.Background(), uuid.NewString())
	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrApprovalNotFound)
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}
