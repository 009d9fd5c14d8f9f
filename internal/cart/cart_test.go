package cart

import (
	"math/rand"
	"testing"

	"github.com/drstein77/storefront/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	mascara = models.Product{ID: "1", Title: "Essence Mascara Lash Princess", Price: 9.99}
	palette = models.Product{ID: "2", Title: "Eyeshadow Palette with Mirror", Price: 19.99}
	shoe    = models.Product{ID: "p1", Title: "Runner", Price: 20}
)

func TestAdd_ThreeTimes(t *testing.T) {
	s := NewState()
	for i := 0; i < 3; i++ {
		s = Add(s, shoe)
	}

	require.Len(t, s.Lines, 1)
	assert.Equal(t, 3, s.Lines[0].Quantity)
	assert.True(t, s.Total.Equal(decimal.NewFromInt(60)), "total %s", s.Total)
	assert.Equal(t, 3, s.ItemCount())
}

func TestAdd_KeepsInsertionOrderAndFirstSnapshot(t *testing.T) {
	s := Add(NewState(), palette)
	s = Add(s, mascara)

	repriced := palette
	repriced.Price = 1
	s = Add(s, repriced)

	require.Len(t, s.Lines, 2)
	assert.Equal(t, models.ProductID("2"), s.Lines[0].Product.ID)
	assert.Equal(t, 19.99, s.Lines[0].Product.Price)
	assert.True(t, s.Total.Equal(decimal.RequireFromString("49.97")), "total %s", s.Total)
}

func TestRemove(t *testing.T) {
	s := Add(Add(NewState(), mascara), mascara)
	s = Remove(s, mascara.ID)
	l, ok := s.Line(mascara.ID)
	require.True(t, ok)
	assert.Equal(t, 1, l.Quantity)

	s = Remove(s, mascara.ID)
	_, ok = s.Line(mascara.ID)
	assert.False(t, ok)
	assert.True(t, s.Total.IsZero())

	assert.Empty(t, cmp.Diff(s, Remove(s, "missing")))
}

func TestSetQuantity(t *testing.T) {
	s := Add(NewState(), palette)

	s = SetQuantity(s, palette.ID, 5)
	l, _ := s.Line(palette.ID)
	assert.Equal(t, 5, l.Quantity)
	assert.True(t, s.Total.Equal(decimal.RequireFromString("99.95")))

	assert.Empty(t, cmp.Diff(s, SetQuantity(s, "missing", 3)), "unknown ids are not added")

	s = SetQuantity(s, palette.ID, 0)
	assert.Empty(t, s.Lines)

	s = SetQuantity(Add(NewState(), palette), palette.ID, -2)
	assert.Empty(t, s.Lines)
}

func TestDeleteAndClear(t *testing.T) {
	s := Add(Add(Add(NewState(), palette), palette), mascara)
	s = Delete(s, palette.ID)
	require.Len(t, s.Lines, 1)
	assert.True(t, s.Total.Equal(decimal.RequireFromString("9.99")))

	s = Clear(s)
	assert.Empty(t, s.Lines)
	assert.True(t, s.Total.IsZero())
}

func TestAddThenRemove_RestoresState(t *testing.T) {
	starts := []State{
		NewState(),
		Add(NewState(), palette),
		Add(Add(NewState(), mascara), mascara),
	}
	for _, start := range starts {
		for _, p := range []models.Product{mascara, palette} {
			got := Remove(Add(start, p), p.ID)
			if diff := cmp.Diff(start, got); diff != "" {
				t.Errorf("add then remove %s (-want +got):\n%s", p.ID, diff)
			}
		}
	}
}

func TestTotal_MatchesLinesUnderRandomOps(t *testing.T) {
	catalog := []models.Product{mascara, palette, shoe, {ID: "4", Price: 0.1}, {ID: "5", Price: 1999.99}}
	rnd := rand.New(rand.NewSource(42))

	s := NewState()
	for i := 0; i < 2000; i++ {
		p := catalog[rnd.Intn(len(catalog))]
		switch rnd.Intn(5) {
		case 0, 1:
			s = Add(s, p)
		case 2:
			s = Remove(s, p.ID)
		case 3:
			s = SetQuantity(s, p.ID, rnd.Intn(6)-1)
		case 4:
			s = Delete(s, p.ID)
		}

		want := decimal.Zero
		seen := map[models.ProductID]bool{}
		for _, l := range s.Lines {
			require.GreaterOrEqual(t, l.Quantity, 1)
			require.False(t, seen[l.Product.ID], "duplicate line %s", l.Product.ID)
			seen[l.Product.ID] = true
			want = want.Add(decimal.NewFromFloat(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		require.True(t, want.Equal(s.Total), "step %d: total %s, lines sum %s", i, s.Total, want)
	}
}

func TestReducers_DoNotMutateInput(t *testing.T) {
	s := Add(Add(NewState(), palette), mascara)
	snapshot := s.Clone()

	_ = Add(s, palette)
	_ = Remove(s, palette.ID)
	_ = SetQuantity(s, mascara.ID, 9)
	_ = Delete(s, mascara.ID)

	assert.Empty(t, cmp.Diff(snapshot, s))
}
