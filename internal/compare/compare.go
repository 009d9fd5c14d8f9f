// Package compare holds the bounded side-by-side comparison set.
package compare

import (
	"slices"

	"github.com/drstein77/storefront/internal/models"
)

// Limit is the most products that can be compared at once.
const Limit = 4

type State struct {
	Items     []models.Product `json:"items"`
	ModalOpen bool             `json:"modalOpen"`
}

func NewState() State {
	return State{Items: []models.Product{}}
}

func (s State) Clone() State {
	out := s
	out.Items = slices.Clone(s.Items)
	if out.Items == nil {
		out.Items = []models.Product{}
	}
	return out
}

func (s State) Contains(id models.ProductID) bool {
	return slices.ContainsFunc(s.Items, func(p models.Product) bool { return p.ID == id })
}

// CanAdd reports whether Add would accept id.
func (s State) CanAdd(id models.ProductID) bool {
	return !s.Contains(id) && len(s.Items) < Limit
}

// Add appends p and opens the modal. Duplicates and additions past Limit are ignored.
func Add(s State, p models.Product) State {
	if !s.CanAdd(p.ID) {
		return s
	}
	out := s.Clone()
	out.Items = append(out.Items, p)
	out.ModalOpen = true
	return out
}

// Remove drops id. The modal flag is left as is.
func Remove(s State, id models.ProductID) State {
	if !s.Contains(id) {
		return s
	}
	out := s.Clone()
	out.Items = slices.DeleteFunc(out.Items, func(p models.Product) bool { return p.ID == id })
	return out
}

func SetModalVisible(s State, visible bool) State {
	out := s.Clone()
	out.ModalOpen = visible
	return out
}

// Clear empties the set and hides the modal.
func Clear(State) State {
	return NewState()
}
