// Package cart holds the shopping cart slice: ordered lines keyed by product
// id and a total that is always recomputed from the lines.
package cart

import (
	"slices"

	"github.com/drstein77/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// Line is one cart entry. Quantity is always at least 1.
type Line struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Subtotal is price times quantity.
func (l Line) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type State struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

func NewState() State {
	return State{Lines: []Line{}, Total: decimal.Zero}
}

func (s State) Clone() State {
	out := s
	out.Lines = slices.Clone(s.Lines)
	if out.Lines == nil {
		out.Lines = []Line{}
	}
	return out
}

func (s State) index(id models.ProductID) int {
	return slices.IndexFunc(s.Lines, func(l Line) bool { return l.Product.ID == id })
}

// Line returns the line for id, if any.
func (s State) Line(id models.ProductID) (Line, bool) {
	if i := s.index(id); i >= 0 {
		return s.Lines[i], true
	}
	return Line{}, false
}

// ItemCount is the sum of quantities.
func (s State) ItemCount() int {
	n := 0
	for _, l := range s.Lines {
		n += l.Quantity
	}
	return n
}

// Add puts one unit of p in the cart. The snapshot taken on first add is kept.
func Add(s State, p models.Product) State {
	out := s.Clone()
	if i := out.index(p.ID); i >= 0 {
		out.Lines[i].Quantity++
	} else {
		out.Lines = append(out.Lines, Line{Product: p, Quantity: 1})
	}
	return withTotal(out)
}

// Remove takes one unit away, dropping the line at quantity 1.
func Remove(s State, id models.ProductID) State {
	i := s.index(id)
	if i < 0 {
		return s
	}
	out := s.Clone()
	if out.Lines[i].Quantity > 1 {
		out.Lines[i].Quantity--
	} else {
		out.Lines = slices.Delete(out.Lines, i, i+1)
	}
	return withTotal(out)
}

// SetQuantity sets an exact quantity; q <= 0 drops the line.
func SetQuantity(s State, id models.ProductID, q int) State {
	if q <= 0 {
		return Delete(s, id)
	}
	i := s.index(id)
	if i < 0 {
		return s
	}
	out := s.Clone()
	out.Lines[i].Quantity = q
	return withTotal(out)
}

// Delete drops the whole line for id.
func Delete(s State, id models.ProductID) State {
	i := s.index(id)
	if i < 0 {
		return s
	}
	out := s.Clone()
	out.Lines = slices.Delete(out.Lines, i, i+1)
	return withTotal(out)
}

func Clear(State) State {
	return NewState()
}

// Total sums line subtotals.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func withTotal(s State) State {
	s.Total = Total(s.Lines)
	return s
}
