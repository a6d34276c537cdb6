package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arrendix/protecciones/internal/activity"
	"github.com/arrendix/protecciones/internal/completion"
	"github.com/arrendix/protecciones/internal/database/dbtest"
	"github.com/arrendix/protecciones/internal/models"
	"github.com/arrendix/protecciones/internal/policy"
	"github.com/arrendix/protecciones/internal/repository"
	xerrors "github.com/arrendix/protecciones/internal/xerrors"
)

type fixture struct {
	db         *gorm.DB
	policies   *repository.PolicyRepository
	actors     *repository.ActorRepository
	activities *activity.Store
	svc        *Service
}

func setup(t *testing.T) *fixture {
	db := dbtest.Open(t)
	f := &fixture{
		db:         db,
		policies:   repository.NewPolicyRepository(db),
		actors:     repository.NewActorRepository(db),
		activities: activity.NewStore(db),
	}
	f.svc = NewService(f.policies, policy.NewValidator(), completion.NewGate(f.actors), f.activities, nil)
	return f
}

func (f *fixture) policy(t *testing.T, status policy.Status, g policy.GuarantorType) *models.Policy {
	p := &models.Policy{
		Status:           status,
		RentAmount:       decimal.NewFromInt(15000),
		GuarantorType:    g,
		TenantRequired:   true,
		LandlordRequired: true,
	}
	require.NoError(t, f.policies.Create(context.Background(), p))
	return p
}

func (f *fixture) actor(t *testing.T, p *models.Policy, at policy.ActorType, complete bool) {
	a, ok := models.NewActor(at, p.ID)
	require.True(t, ok)
	require.NoError(t, f.actors.Create(context.Background(), a))
	if complete {
		require.NoError(t, f.actors.MarkComplete(context.Background(), a, time.Now()))
	}
}

func (f *fixture) history(t *testing.T, policyID uint) []models.PolicyActivity {
	list, err := f.activities.List(context.Background(), policyID, activity.Oldest)
	require.NoError(t, err)
	return list
}

func (f *fixture) reload(t *testing.T, id uint) *models.Policy {
	p, err := f.policies.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func TestTransition_ApprovalBlockedByIncompleteAval(t *testing.T) {
	f := setup(t)
	p := f.policy(t, policy.StatusPendingApproval, policy.GuarantorBoth)
	f.actor(t, p, policy.ActorTenant, true)
	f.actor(t, p, policy.ActorLandlord, true)
	f.actor(t, p, policy.ActorJointObligor, true)
	f.actor(t, p, policy.ActorAval, false)

	res, err := f.svc.Transition(context.Background(), Request{
		PolicyID:    p.ID,
		Status:      policy.StatusApproved,
		PerformedBy: activity.User("staff-1"),
	})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, policy.ErrIncompleteActors))
	assert.True(t, isRejected(err))

	var te *policy.TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, []policy.ActorType{policy.ActorAval}, te.Missing)

	assert.Equal(t, policy.StatusPendingApproval, f.reload(t, p.ID).Status)
	assert.Empty(t, f.history(t, p.ID))
}

func TestTransition_ApprovalWithoutGuarantor(t *testing.T) {
	f := setup(t)
	p := f.policy(t, policy.StatusPendingApproval, policy.GuarantorNone)
	f.actor(t, p, policy.ActorTenant, true)
	f.actor(t, p, policy.ActorLandlord, true)

	res, err := f.svc.Transition(context.Background(), Request{
		PolicyID:    p.ID,
		Status:      policy.StatusApproved,
		PerformedBy: activity.User("staff-1"),
		IPAddress:   "192.168.1.20",
	})
	require.NoError(t, err)
	require.NotNil(t, res.Activity)
	assert.False(t, res.NoOp)
	assert.Empty(t, res.Warning)
	assert.Equal(t, policy.StatusApproved, res.Policy.Status)
	require.NotNil(t, res.Policy.ApprovedAt)

	history := f.history(t, p.ID)
	require.Len(t, history, 1)
	assert.Equal(t, "approved", history[0].Action)
	assert.Equal(t, "PENDING_APPROVAL", history[0].Details["previousStatus"])
	assert.Equal(t, "APPROVED", history[0].Details["newStatus"])
	assert.Equal(t, models.PerformerUser, history[0].PerformedByType)
	require.NotNil(t, history[0].IPAddress)
	assert.Equal(t, "192.168.1.20", *history[0].IPAddress)

	stored := f.reload(t, p.ID)
	assert.Equal(t, policy.StatusApproved, stored.Status)
	assert.NotNil(t, stored.ApprovedAt)
}

func TestTransition_UnknownPolicy(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Transition(context.Background(), Request{PolicyID: 404, Status: policy.StatusApproved})
	assert.ErrorIs(t, err, xerrors.ErrPolicyNotFound)
	assert.False(t, isRejected(err))

	var count int64
	require.NoError(t, f.db.Model(&models.PolicyActivity{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestTransition_SequentialChangesAreLoggedInOrder(t *testing.T) {
	f := setup(t)
	p := f.policy(t, policy.StatusDraft, policy.GuarantorNone)
	ctx := context.Background()

	_, err := f.svc.Transition(ctx, Request{PolicyID: p.ID, Status: policy.StatusCollectingInfo})
	require.NoError(t, err)
	res, err := f.svc.Transition(ctx, Request{PolicyID: p.ID, Status: "under_investigation"})
	require.NoError(t, err)
	require.NotNil(t, res.Policy.SubmittedAt)

	history := f.history(t, p.ID)
	require.Len(t, history, 2)
	assert.Equal(t, "collecting_info", history[0].Action)
	assert.Equal(t, "under_investigation", history[1].Action)
	assert.Equal(t, "COLLECTING_INFO", history[1].Details["previousStatus"])
	assert.Equal(t, models.PerformerSystem, history[0].PerformedByType)
}

func TestTransition_SameStatusIsNoOp(t *testing.T) {
	f := setup(t)
	p := f.policy(t, policy.StatusCollectingInfo, policy.GuarantorNone)
	before := f.reload(t, p.ID)

	res, err := f.svc.Transition(context.Background(), Request{PolicyID: p.ID, Status: policy.StatusCollectingInfo})
	require.NoError(t, err)
	assert.True(t, res.NoOp)
	assert.Nil(t, res.Activity)

	after := f.reload(t, p.ID)
	assert.True(t, before.UpdatedAt.Equal(after.UpdatedAt))
	assert.Empty(t, f.history(t, p.ID))
}

func TestTransition_MilestonesAreSetOnce(t *testing.T) {
	f := setup(t)
	p := f.policy(t, policy.StatusPendingApproval, policy.GuarantorNone)
	f.actor(t, p, policy.ActorTenant, true)
	f.actor(t, p, policy.ActorLandlord, true)
	ctx := context.Background()

	first := time.Date(2025, 10, 1, 10, 0, 0, 0, time.UTC)
	clock := first
	f.svc.now = func() time.Time { return clock }

	steps := []Request{
		{Status: policy.StatusApproved},
		{Status: policy.StatusInvestigationRejected, Reason: "ingresos no comprobables"},
		{Status: policy.StatusCollectingInfo},
		{Status: policy.StatusUnderInvestigation},
		{Status: policy.StatusPendingApproval},
		{Status: policy.StatusApproved},
	}
	for _, step := range steps {
		step.PolicyID = p.ID
		_, err := f.svc.Transition(ctx, step)
		require.NoError(t, err, "to %s", step.Status)
		clock = clock.Add(24 * time.Hour)
	}

	stored := f.reload(t, p.ID)
	assert.Equal(t, policy.StatusApproved, stored.Status)
	require.NotNil(t, stored.ApprovedAt)
	assert.True(t, stored.ApprovedAt.Equal(first), "approvedAt moved to %s", stored.ApprovedAt)
	assert.Equal(t, "ingresos no comprobables", stored.StatusReason)
	assert.Len(t, f.history(t, p.ID), len(steps))
}

func TestTransition_RejectionNeedsReason(t *testing.T) {
	f := setup(t)
	p := f.policy(t, policy.StatusUnderInvestigation, policy.GuarantorAval)

	_, err := f.svc.Transition(context.Background(), Request{PolicyID: p.ID, Status: policy.StatusInvestigationRejected, Reason: "   "})
	assert.ErrorIs(t, err, policy.ErrMissingReason)

	res, err := f.svc.Transition(context.Background(), Request{PolicyID: p.ID, Status: policy.StatusCancelled, Reason: "desistió"})
	require.NoError(t, err)
	assert.NotNil(t, res.Policy.CancelledAt)

	_, err = f.svc.Transition(context.Background(), Request{PolicyID: p.ID, Status: policy.StatusActive})
	assert.ErrorIs(t, err, policy.ErrInvalidTransition)
}

func TestTransition_UnknownStatus(t *testing.T) {
	f := setup(t)
	p := f.policy(t, policy.StatusDraft, policy.GuarantorNone)

	_, err := f.svc.Transition(context.Background(), Request{PolicyID: p.ID, Status: "ARCHIVED"})
	assert.ErrorIs(t, err, policy.ErrInvalidStatus)
	assert.Equal(t, policy.StatusDraft, f.reload(t, p.ID).Status)
}

// isRejected reports whether err is a validation outcome rather than a
// storage or lookup failure.
func isRejected(err error) bool {
	var te *policy.TransitionError
	return errors.As(err, &te)
}

type brokenLogger struct{ activity.Logger }

func (brokenLogger) Record(context.Context, activity.Entry) (*models.PolicyActivity, error) {
	return nil, xerrors.ErrStorageUnavailable
}

func TestTransition_LogFailureIsAWarning(t *testing.T) {
	f := setup(t)
	p := f.policy(t, policy.StatusDraft, policy.GuarantorNone)
	svc := NewService(f.policies, policy.NewValidator(), completion.NewGate(f.actors), brokenLogger{}, nil)

	res, err := svc.Transition(context.Background(), Request{PolicyID: p.ID, Status: policy.StatusCollectingInfo})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Warning)
	assert.Nil(t, res.Activity)
	assert.Equal(t, policy.StatusCollectingInfo, f.reload(t, p.ID).Status)
}
