package allocation

import (
	"fmt"
	"sort"

	"github.com/jhoicas/pos-checkout/internal/domain"
	"github.com/jhoicas/pos-checkout/internal/domain/entity"
)

// Snapshot forma serializable de una sesión abierta, para guardarla entre peticiones.
type Snapshot struct {
	ID            string                 `json:"id"`
	RequiredCount int                    `json:"required_count"`
	ExcludedIDs   []string               `json:"excluded_ids,omitempty"`
	Candidates    []entity.InventoryUnit `json:"candidates"`
	SelectedIDs   []string               `json:"selected_ids,omitempty"`
	SearchFilter  string                 `json:"search_filter,omitempty"`
	State         State                  `json:"state"`
	Reason        CancelReason           `json:"reason,omitempty"`
}

// Snapshot copia el estado actual de la sesión.
func (s *Session) Snapshot() Snapshot {
	excluded := make([]string, 0, len(s.excluded))
	for id := range s.excluded {
		excluded = append(excluded, id)
	}
	sort.Strings(excluded)
	candidates := make([]entity.InventoryUnit, len(s.candidates))
	copy(candidates, s.candidates)
	selected := make([]string, 0, len(s.selected))
	for _, u := range s.selected {
		selected = append(selected, u.ID)
	}
	return Snapshot{
		ID:            s.id,
		RequiredCount: s.requiredCount,
		ExcludedIDs:   excluded,
		Candidates:    candidates,
		SelectedIDs:   selected,
		SearchFilter:  s.searchFilter,
		State:         s.state,
		Reason:        s.reason,
	}
}

// Restore reconstruye una sesión desde un Snapshot verificando sus invariantes.
func Restore(snap Snapshot) (*Session, error) {
	s, err := NewSession(snap.ID, snap.RequiredCount, snap.ExcludedIDs)
	if err != nil {
		return nil, err
	}
	switch snap.State {
	case StateLoading, StateReady, StateSelecting, StateCompleted, StateCancelled:
	default:
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, snap.State)
	}
	if len(snap.SelectedIDs) > snap.RequiredCount {
		return nil, fmt.Errorf("%w: %d seleccionadas para %d requeridas", domain.ErrInvalidInput, len(snap.SelectedIDs), snap.RequiredCount)
	}
	s.candidates = make([]entity.InventoryUnit, len(snap.Candidates))
	copy(s.candidates, snap.Candidates)
	for _, id := range snap.SelectedIDs {
		i := s.indexCandidate(id)
		if i < 0 || s.IsExcluded(id) || s.indexSelected(id) >= 0 {
			return nil, fmt.Errorf("%w: unidad seleccionada %q inconsistente", domain.ErrInvalidInput, id)
		}
		s.selected = append(s.selected, s.candidates[i])
	}
	s.searchFilter = snap.SearchFilter
	s.state = snap.State
	s.reason = snap.Reason
	return s, nil
}
