package query

import (
	"testing"

	"github.com/drstein77/storefront/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_StaleResponseIsDiscarded(t *testing.T) {
	s := NewState()
	s = Begin(s, "r1")
	r1 := s.Seq
	s = Begin(s, "r2")
	r2 := s.Seq
	require.NotEqual(t, r1, r2)

	s, applied := Succeeded(s, r2, Result{Items: []models.Product{{ID: "2"}}, TotalCount: 1})
	require.True(t, applied)

	after, applied := Succeeded(s, r1, Result{Items: []models.Product{{ID: "1"}}, TotalCount: 99})
	assert.False(t, applied)
	assert.Empty(t, cmp.Diff(s, after))
	assert.Equal(t, models.ProductID("2"), after.Items[0].ID)
	assert.Equal(t, models.StatusSucceeded, after.Status)
}

func TestSequence_StaleFailureIsDiscarded(t *testing.T) {
	s := Begin(NewState(), "r1")
	r1 := s.Seq
	s = Begin(s, "r2")

	after, applied := Failed(s, r1, "boom")
	assert.False(t, applied)
	assert.Equal(t, models.StatusLoading, after.Status)
	assert.Empty(t, after.Error)
}

func TestFailed_KeepsItems(t *testing.T) {
	s := Begin(NewState(), "r1")
	s, _ = Succeeded(s, s.Seq, Result{Items: []models.Product{{ID: "1"}, {ID: "2"}}, TotalCount: 30})

	s = Begin(s, "r2")
	assert.Len(t, s.Items, 2, "items stay visible while loading")

	s, applied := Failed(s, s.Seq, "catalog products: status 500")
	require.True(t, applied)
	assert.Equal(t, models.StatusFailed, s.Status)
	assert.Equal(t, "catalog products: status 500", s.Error)
	assert.Len(t, s.Items, 2)
	assert.Equal(t, 30, s.TotalCount)
}

func TestSucceeded_ClearsError(t *testing.T) {
	s := Begin(NewState(), "r1")
	s, _ = Failed(s, s.Seq, "boom")
	s = Begin(s, "r2")
	s, _ = Succeeded(s, s.Seq, Result{})

	assert.Equal(t, models.StatusSucceeded, s.Status)
	assert.Empty(t, s.Error)
	assert.NotNil(t, s.Items)
}

func TestSetPage(t *testing.T) {
	assert.Equal(t, 1, SetPage(NewState(), 0).Page)
	assert.Equal(t, 1, SetPage(NewState(), -3).Page)
	assert.Equal(t, 4, SetPage(NewState(), 4).Page)
}

func TestTotalPages(t *testing.T) {
	s := NewState()
	for total, want := range map[int]int{0: 0, 1: 1, 12: 1, 13: 2, 194: 17} {
		s.TotalCount = total
		assert.Equal(t, want, TotalPages(s), "total %d", total)
	}
}

func TestClone_IsDeep(t *testing.T) {
	s := NewState()
	s.Items = []models.Product{{ID: "1"}}
	c := s.Clone()
	c.Items[0].ID = "x"
	assert.Equal(t, models.ProductID("1"), s.Items[0].ID)
}

func TestNeedsQuery(t *testing.T) {
	s := NewState()
	assert.False(t, NeedsQuery(s, "k1"), "nothing is fetched before the first request")

	s = Invalidate(s)
	assert.True(t, NeedsQuery(s, "k1"))

	s = Begin(s, "k1")
	assert.False(t, s.Stale)
	assert.False(t, NeedsQuery(s, "k1"))
	assert.True(t, NeedsQuery(s, "k2"))
	assert.True(t, NeedsQuery(Invalidate(s), "k1"))
}
