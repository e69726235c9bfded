// Package allocation implementa la máquina de estados de la sesión de asignación de
// unidades serializadas (serial/IMEI/MAC) para una línea del carrito.
//
// Estados: loading -> ready -> selecting -> completed; cancelled es alcanzable desde
// cualquier estado no terminal. La sesión no reserva nada en la fuente de inventario.
package allocation

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/pos-checkout/internal/domain"
	"github.com/jhoicas/pos-checkout/internal/domain/entity"
)

// State estado de la sesión.
type State string

const (
	StateLoading   State = "loading"
	StateReady     State = "ready"
	StateSelecting State = "selecting"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
)

// IsTerminal indica si la sesión ya no admite operaciones.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled
}

// CancelReason motivo por el que una sesión terminó cancelada.
type CancelReason string

const (
	ReasonNone             CancelReason = ""
	ReasonEmptyEligibleSet CancelReason = "empty_eligible_set"
	ReasonFetchFailed      CancelReason = "fetch_failed"
	ReasonUserCancelled    CancelReason = "cancelled_by_user"
)

// Allocation resultado emitido al completar: exactamente RequiredCount unidades, en orden de selección.
type Allocation struct {
	SessionID string
	Units     []entity.InventoryUnit
}

// Session selección en curso para una línea del carrito.
// Invariantes: selected sin duplicados, sin ids excluidos y len(selected) <= requiredCount.
// No es segura para uso concurrente; el dueño (orquestador) serializa las llamadas.
type Session struct {
	id            string
	requiredCount int
	excluded      map[string]struct{}
	candidates    []entity.InventoryUnit // orden de la fuente; incluye los seleccionados
	selected      []entity.InventoryUnit
	searchFilter  string
	state         State
	reason        CancelReason
}

// NewSession crea la sesión en estado loading.
func NewSession(id string, requiredCount int, excludedIDs []string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id de sesión vacío", domain.ErrInvalidInput)
	}
	if requiredCount < 1 {
		return nil, fmt.Errorf("%w: la cantidad requerida debe ser >= 1", domain.ErrInvalidInput)
	}
	excluded := make(map[string]struct{}, len(excludedIDs))
	for _, id := range excludedIDs {
		if id = strings.TrimSpace(id); id != "" {
			excluded[id] = struct{}{}
		}
	}
	return &Session{
		id:            id,
		requiredCount: requiredCount,
		excluded:      excluded,
		state:         StateLoading,
	}, nil
}

func (s *Session) ID() string           { return s.id }
func (s *Session) State() State         { return s.state }
func (s *Session) Reason() CancelReason { return s.reason }
func (s *Session) RequiredCount() int   { return s.requiredCount }
func (s *Session) SearchFilter() string { return s.searchFilter }

// Remaining cantidad de unidades que faltan por seleccionar.
func (s *Session) Remaining() int {
	if s.state.IsTerminal() {
		return 0
	}
	return s.requiredCount - len(s.selected)
}

// IsExcluded indica si el id fue excluido por el llamador (comprometido en otra línea).
func (s *Session) IsExcluded(unitID string) bool {
	_, ok := s.excluded[unitID]
	return ok
}

// Load aplica el resultado de la consulta de candidatos (loading -> ready).
// Solo conserva unidades elegibles y no excluidas, en el orden de la fuente.
// Si no queda ninguna la sesión pasa directo a cancelled (no es un error).
func (s *Session) Load(units []*entity.InventoryUnit) (State, error) {
	if s.state != StateLoading {
		return s.state, fmt.Errorf("%w: la sesión ya cargó sus candidatos", domain.ErrConflict)
	}
	seen := make(map[string]struct{}, len(units))
	eligible := make([]entity.InventoryUnit, 0, len(units))
	for _, u := range units {
		if !u.IsEligible() || s.IsExcluded(u.ID) {
			continue
		}
		if _, dup := seen[u.ID]; dup {
			continue
		}
		seen[u.ID] = struct{}{}
		eligible = append(eligible, *u)
	}
	if len(eligible) == 0 {
		s.close(StateCancelled, ReasonEmptyEligibleSet)
		return s.state, nil
	}
	s.candidates = eligible
	s.state = StateReady
	return s.state, nil
}

// Fail registra que la consulta de candidatos falló: la sesión se cancela y no se reintenta.
func (s *Session) Fail(cause error) error {
	if s.state == StateLoading {
		s.close(StateCancelled, ReasonFetchFailed)
	}
	if cause == nil {
		return domain.ErrCandidateFetch
	}
	return fmt.Errorf("%w: %w", domain.ErrCandidateFetch, cause)
}

// Select agrega la unidad a la selección. Si con ella se alcanza la cantidad requerida
// la sesión se completa y devuelve la asignación; después no admite más operaciones.
// Los rechazos (ya seleccionada, cupo lleno, no candidata) no cambian el estado.
func (s *Session) Select(unitID string) (*Allocation, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if s.indexSelected(unitID) >= 0 {
		return nil, domain.ErrUnitAlreadySelected
	}
	if len(s.selected) >= s.requiredCount {
		return nil, domain.ErrSelectionFull
	}
	i := s.indexCandidate(unitID)
	if i < 0 || s.IsExcluded(unitID) {
		return nil, domain.ErrUnitNotCandidate
	}
	s.selected = append(s.selected, s.candidates[i])
	s.state = StateSelecting
	if len(s.selected) == s.requiredCount {
		return s.complete(), nil
	}
	return nil, nil
}

// Deselect quita la unidad de la selección y la devuelve al pool visible.
// Quitar una unidad que no está seleccionada no es un error.
func (s *Session) Deselect(unitID string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if i := s.indexSelected(unitID); i >= 0 {
		s.selected = append(s.selected[:i], s.selected[i+1:]...)
	}
	if len(s.selected) == 0 {
		s.state = StateReady
	}
	return nil
}

// Search guarda el filtro y devuelve el pool visible filtrado.
// Coincidencia por subcadena sin distinguir mayúsculas contra serial, IMEI o MAC.
func (s *Session) Search(term string) ([]entity.InventoryUnit, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	s.searchFilter = strings.TrimSpace(term)
	return s.View(), nil
}

// View pool visible (candidatos no seleccionados) con el filtro vigente aplicado.
func (s *Session) View() []entity.InventoryUnit {
	visible := s.Visible()
	if s.searchFilter == "" {
		return visible
	}
	needle := cases.Fold().String(s.searchFilter)
	out := make([]entity.InventoryUnit, 0, len(visible))
	for _, u := range visible {
		if matches(u.Identifiers, needle) {
			out = append(out, u)
		}
	}
	return out
}

// Visible candidatos no seleccionados, en el orden de la fuente.
func (s *Session) Visible() []entity.InventoryUnit {
	out := make([]entity.InventoryUnit, 0, len(s.candidates))
	for _, u := range s.candidates {
		if s.indexSelected(u.ID) < 0 {
			out = append(out, u)
		}
	}
	return out
}

// Selected copia de la selección actual en orden de selección.
func (s *Session) Selected() []entity.InventoryUnit {
	out := make([]entity.InventoryUnit, len(s.selected))
	copy(out, s.selected)
	return out
}

// Confirm completa la sesión explícitamente; exige exactamente RequiredCount unidades.
func (s *Session) Confirm() (*Allocation, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if len(s.selected) != s.requiredCount {
		return nil, fmt.Errorf("%w: seleccionadas %d de %d", domain.ErrCountMismatch, len(s.selected), s.requiredCount)
	}
	return s.complete(), nil
}

// Cancel descarta la sesión sin efectos en la fuente de inventario. Repetirlo no es error.
func (s *Session) Cancel() error {
	switch s.state {
	case StateCancelled:
		return nil
	case StateCompleted:
		return domain.ErrSessionClosed
	}
	s.close(StateCancelled, ReasonUserCancelled)
	return nil
}

func (s *Session) checkOpen() error {
	switch {
	case s.state == StateLoading:
		return domain.ErrSessionNotReady
	case s.state.IsTerminal():
		return domain.ErrSessionClosed
	}
	return nil
}

func (s *Session) complete() *Allocation {
	alloc := &Allocation{SessionID: s.id, Units: s.Selected()}
	s.close(StateCompleted, ReasonNone)
	return alloc
}

// close lleva la sesión a un estado terminal y descarta el estado local.
func (s *Session) close(state State, reason CancelReason) {
	s.state = state
	s.reason = reason
	s.candidates = nil
	s.selected = nil
	s.searchFilter = ""
}

func (s *Session) indexSelected(unitID string) int {
	for i, u := range s.selected {
		if u.ID == unitID {
			return i
		}
	}
	return -1
}

func (s *Session) indexCandidate(unitID string) int {
	for i, u := range s.candidates {
		if u.ID == unitID {
			return i
		}
	}
	return -1
}

func matches(ids entity.LineIdentifiers, foldedNeedle string) bool {
	fold := cases.Fold()
	for _, v := range []string{ids.Serial, ids.IMEI, ids.MAC} {
		if v != "" && strings.Contains(fold.String(v), foldedNeedle) {
			return true
		}
	}
	return false
}
