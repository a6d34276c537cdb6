package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus(" pending_approval ")
	assert.True(t, ok)
	assert.Equal(t, StatusPendingApproval, s)

	_, ok = ParseStatus("PAID")
	assert.False(t, ok)
}

func TestRegistryLookups(t *testing.T) {
	assert.Equal(t, "Aprobada", LabelFor(StatusApproved))
	assert.Equal(t, "UNKNOWN", LabelFor(Status("UNKNOWN")))
	assert.Equal(t, ColorRed, ColorFor(StatusCancelled))
	assert.True(t, IsFilterable(StatusActive))
	assert.False(t, IsFilterable(StatusContractPending))
	assert.False(t, IsFilterable(Status("UNKNOWN")))
	assert.Equal(t, -1, Rank(Status("UNKNOWN")))
}

func TestStatusesAreOrdered(t *testing.T) {
	all := Statuses()
	assert.Len(t, all, 11)
	assert.Equal(t, StatusDraft, all[0])

	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, Rank(all[i]), Rank(all[i-1]), "%s after %s", all[i], all[i-1])
	}

	// callers get a copy
	all[0] = StatusActive
	assert.Equal(t, StatusDraft, Statuses()[0])
}

func TestDescribe(t *testing.T) {
	infos := Describe()
	assert.Len(t, infos, len(Statuses()))
	last := infos[len(infos)-1]
	assert.Equal(t, StatusCancelled, last.Value)
	assert.True(t, last.Terminal)
}

func TestGuarantorTypes(t *testing.T) {
	g, ok := ParseGuarantorType("both")
	assert.True(t, ok)
	assert.Equal(t, []ActorType{ActorJointObligor, ActorAval}, g.Guarantors())

	g, ok = ParseGuarantorType("")
	assert.True(t, ok)
	assert.Empty(t, g.Guarantors())

	_, ok = ParseGuarantorType("fiador")
	assert.False(t, ok)

	a, ok := ParseActorType("joint-obligor")
	assert.True(t, ok)
	assert.Equal(t, ActorJointObligor, a)
}
