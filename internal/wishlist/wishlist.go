// Package wishlist holds the unbounded set of saved products.
package wishlist

import (
	"slices"

	"github.com/drstein77/storefront/internal/models"
)

type State struct {
	Items []models.Product `json:"items"`
}

func NewState() State {
	return State{Items: []models.Product{}}
}

func (s State) Clone() State {
	out := State{Items: slices.Clone(s.Items)}
	if out.Items == nil {
		out.Items = []models.Product{}
	}
	return out
}

func (s State) Contains(id models.ProductID) bool {
	return slices.ContainsFunc(s.Items, func(p models.Product) bool { return p.ID == id })
}

// Add saves p unless it is already saved.
func Add(s State, p models.Product) State {
	if s.Contains(p.ID) {
		return s
	}
	out := s.Clone()
	out.Items = append(out.Items, p)
	return out
}

func Remove(s State, id models.ProductID) State {
	if !s.Contains(id) {
		return s
	}
	out := s.Clone()
	out.Items = slices.DeleteFunc(out.Items, func(p models.Product) bool { return p.ID == id })
	return out
}

// Toggle saves p, or unsaves it when already saved.
func Toggle(s State, p models.Product) State {
	if s.Contains(p.ID) {
		return Remove(s, p.ID)
	}
	return Add(s, p)
}

func Clear(State) State {
	return NewState()
}
