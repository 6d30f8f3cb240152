package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/proxykit/pkg/meta"
)

func TestCollectWalkOrder(t *testing.T) {
	cands, err := Collect(scenarioB(t), []*meta.Type{scenarioC(t)})
	require.NoError(t, err)

	// public methods (own, then Root's), then own protected, then contracts
	assert.Equal(t, []string{"a1", "String", "Hash", "Equals", "cp", "c1"}, names(cands))
	assert.Equal(t, FromBase, cands[0].Origin)
	assert.Equal(t, FromContract, cands[5].Origin)
	assert.Equal(t, "C", cands[5].Source.Name())
	assert.Equal(t, meta.Protected, cands[4].Visibility())
}

func TestCollectFiltersIneligible(t *testing.T) {
	base := meta.NewClass("Mixed").
		Method("Static", func(self meta.Object) error { return nil }, meta.Modifiers(meta.Static)).
		Method("Sealed", func(self meta.Object) error { return nil }, meta.Modifiers(meta.Final)).
		Method("Bridged", func(self meta.Object) error { return nil }, meta.Modifiers(meta.Bridge)).
		Method("hidden", func(self meta.Object) error { return nil }, meta.Visible(meta.Private)).
		Method("local", func(self meta.Object) error { return nil }, meta.Visible(meta.Package)).
		Method("Open", func(self meta.Object) error { return nil }).
		MustBuild()
	// the contract redeclares a filtered signature; the base occurrence was
	// seen first, so it stays filtered
	c := meta.NewContract("Seal").Declare("Sealed", nil).MustBuild()

	cands, err := Collect(base, []*meta.Type{c})
	require.NoError(t, err)
	assert.Equal(t, []string{"Open", "String", "Hash", "Equals"}, names(cands))
}

func TestCollectFirstSeenWins(t *testing.T) {
	d1 := multiplier(t, "D1", 2)
	d2 := multiplier(t, "D2", 4)

	cands, err := Collect(nil, []*meta.Type{d1, d2})
	require.NoError(t, err)
	require.Len(t, cands, 4)
	ss := cands[3]
	assert.Equal(t, "ss", ss.Name())
	assert.Same(t, d1, ss.DeclaringType())
	assert.True(t, ss.HasDefault())

	cands, err = Collect(nil, []*meta.Type{d2, d1})
	require.NoError(t, err)
	assert.Same(t, d2, cands[3].DeclaringType())
}

func TestCollectNoContracts(t *testing.T) {
	cands, err := Collect(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"String", "Hash", "Equals"}, names(cands))
}

func TestCollectRejectsInvalidTypes(t *testing.T) {
	c := scenarioC(t)

	_, err := Collect(c, nil)
	assert.ErrorIs(t, err, ErrInvalidBase)

	_, err = Collect(nil, []*meta.Type{scenarioB(t)})
	assert.ErrorIs(t, err, ErrInvalidContract)

	_, err = Collect(nil, []*meta.Type{nil})
	assert.ErrorIs(t, err, ErrInvalidContract)
}
