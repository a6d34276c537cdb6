package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrendix/protecciones/internal/models"
	"github.com/arrendix/protecciones/internal/policy"
)

type staticFlags map[policy.ActorType][]bool

func (s staticFlags) CompletionFlags(context.Context, uint) (map[policy.ActorType][]bool, error) {
	return s, nil
}

type failingFlags struct{}

func (failingFlags) CompletionFlags(context.Context, uint) (map[policy.ActorType][]bool, error) {
	return nil, errors.New("db down")
}

func policyWith(g policy.GuarantorType) *models.Policy {
	return &models.Policy{ID: 1, GuarantorType: g, TenantRequired: true, LandlordRequired: true}
}

func TestGate_BothGuarantorsWithIncompleteAval(t *testing.T) {
	gate := NewGate(staticFlags{
		policy.ActorTenant:       {true},
		policy.ActorLandlord:     {true},
		policy.ActorJointObligor: {true},
		policy.ActorAval:         {false},
	})

	ok, err := gate.IsSatisfied(context.Background(), policyWith(policy.GuarantorBoth))
	require.NoError(t, err)
	assert.False(t, ok)

	missing, err := gate.MissingActors(context.Background(), policyWith(policy.GuarantorBoth))
	require.NoError(t, err)
	assert.Equal(t, []policy.ActorType{policy.ActorAval}, missing)
}

func TestGate_NoGuarantorIgnoresGuarantorActors(t *testing.T) {
	gate := NewGate(staticFlags{
		policy.ActorTenant:   {true},
		policy.ActorLandlord: {true},
		policy.ActorAval:     {false},
	})

	report, err := gate.Evaluate(context.Background(), policyWith(policy.GuarantorNone))
	require.NoError(t, err)
	assert.True(t, report.Satisfied())
	assert.Equal(t, []policy.ActorType{policy.ActorTenant, policy.ActorLandlord}, report.Required)
	assert.Empty(t, report.Missing)
}

func TestGate_NotCreatedVersusIncomplete(t *testing.T) {
	report := Build(
		[]policy.ActorType{policy.ActorTenant, policy.ActorLandlord, policy.ActorJointObligor},
		map[policy.ActorType][]bool{
			policy.ActorTenant:   {true, false},
			policy.ActorLandlord: {true},
		},
	)

	assert.False(t, report.Satisfied())
	assert.Equal(t, []policy.ActorType{policy.ActorTenant, policy.ActorJointObligor}, report.Missing)
	assert.Equal(t, StateIncomplete, report.Roles[0].State)
	assert.Equal(t, 1, report.Roles[0].Complete)
	assert.Equal(t, 2, report.Roles[0].Total)
	assert.Equal(t, StateComplete, report.Roles[1].State)
	assert.Equal(t, StateNotCreated, report.Roles[2].State)
}

func TestGate_OptionalTenantAndLandlord(t *testing.T) {
	p := &models.Policy{ID: 1, GuarantorType: policy.GuarantorAval}
	gate := NewGate(staticFlags{policy.ActorAval: {true}})

	ok, err := gate.IsSatisfied(context.Background(), p)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGate_SourceErrorPropagates(t *testing.T) {
	_, err := NewGate(failingFlags{}).IsSatisfied(context.Background(), policyWith(policy.GuarantorNone))
	assert.EqualError(t, err, "db down")
}
