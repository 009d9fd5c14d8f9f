package query

import (
	"slices"

	"github.com/drstein77/storefront/internal/models"
)

// State is the published catalog page plus the bookkeeping that keeps
// out-of-order responses from overwriting newer ones.
type State struct {
	Items      []models.Product `json:"items"`
	TotalCount int              `json:"totalCount"`
	Page       int              `json:"page"`
	PageSize   int              `json:"pageSize"`
	Sort       models.SortKey   `json:"sort"`
	Status     models.Status    `json:"status"`
	Error      string           `json:"error,omitempty"`

	// Seq is the sequence number of the latest issued query.
	Seq uint64 `json:"seq"`
	// IssuedKey is the Params key of the latest issued query.
	IssuedKey string `json:"-"`
	// Stale forces the next dispatch to issue a query even if the key is unchanged.
	Stale bool `json:"-"`
}

func NewState() State {
	return State{
		Items:    []models.Product{},
		Page:     1,
		PageSize: models.PageSize,
		Sort:     models.SortRelevance,
		Status:   models.StatusIdle,
	}
}

func (s State) Clone() State {
	out := s
	out.Items = slices.Clone(s.Items)
	return out
}

// SetPage moves to page n, clamped to 1.
func SetPage(s State, n int) State {
	out := s.Clone()
	out.Page = max(n, 1)
	return out
}

func SetSort(s State, key models.SortKey) State {
	out := s.Clone()
	out.Sort = key
	return out
}

// Begin issues a new query: it bumps the sequence and enters loading.
// Items stay in place until the response lands.
func Begin(s State, key string) State {
	out := s.Clone()
	out.Seq++
	out.IssuedKey = key
	out.Stale = false
	out.Status = models.StatusLoading
	return out
}

// Invalidate marks the published page as needing a reload.
func Invalidate(s State) State {
	out := s.Clone()
	out.Stale = true
	return out
}

// NeedsQuery reports whether a query for key should be issued. Nothing is
// fetched before the first explicit request.
func NeedsQuery(s State, key string) bool {
	return s.Stale || (s.Seq > 0 && key != s.IssuedKey)
}

// IsCurrent reports whether seq belongs to the latest issued query.
func IsCurrent(s State, seq uint64) bool {
	return seq == s.Seq
}

// Succeeded publishes r unless seq is stale.
func Succeeded(s State, seq uint64, r Result) (State, bool) {
	if !IsCurrent(s, seq) {
		return s, false
	}
	out := s.Clone()
	out.Items = slices.Clone(r.Items)
	if out.Items == nil {
		out.Items = []models.Product{}
	}
	out.TotalCount = r.TotalCount
	out.Status = models.StatusSucceeded
	out.Error = ""
	return out, true
}

// Failed records msg unless seq is stale. Prior items are kept.
func Failed(s State, seq uint64, msg string) (State, bool) {
	if !IsCurrent(s, seq) {
		return s, false
	}
	out := s.Clone()
	out.Status = models.StatusFailed
	out.Error = msg
	return out, true
}

// TotalPages is derived from the upstream total.
func TotalPages(s State) int {
	size := max(s.PageSize, 1)
	return (s.TotalCount + size - 1) / size
}
