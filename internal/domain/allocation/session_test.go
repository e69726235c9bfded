package allocation_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-checkout/internal/domain"
	"github.com/jhoicas/pos-checkout/internal/domain/allocation"
	"github.com/jhoicas/pos-checkout/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func unit(id, serial, imei, mac string) *entity.InventoryUnit {
	return &entity.InventoryUnit{
		ID:          id,
		ProductID:   "prod-1",
		Identifiers: entity.LineIdentifiers{Serial: serial, IMEI: imei, MAC: mac},
		Status:      entity.UnitStatusAvailable,
	}
}

func ids(units []entity.InventoryUnit) []string {
	out := make([]string, 0, len(units))
	for _, u := range units {
		out = append(out, u.ID)
	}
	return out
}

func openSession(t *testing.T, required int, excluded []string, units ...*entity.InventoryUnit) *allocation.Session {
	t.Helper()
	s, err := allocation.NewSession("sess-1", required, excluded)
	require.NoError(t, err)
	_, err = s.Load(units)
	require.NoError(t, err)
	return s
}

// ──────────────────────────────────────────────────────────────────────────────
// Carga de candidatos
// ──────────────────────────────────────────────────────────────────────────────

func TestNewSession_CantidadRequeridaInvalida(t *testing.T) {
	_, err := allocation.NewSession("s", 0, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = allocation.NewSession("", 1, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLoad_FiltraNoElegiblesExcluidosYDuplicados(t *testing.T) {
	sold := unit("sold", "S-9", "", "")
	sold.Status = entity.UnitStatusSold
	noCode := unit("nocode", " ", "", "")

	s := openSession(t, 2, []string{"B"},
		unit("A", "SN-A", "", ""),
		unit("B", "SN-B", "", ""),
		sold,
		noCode,
		unit("C", "", "", "aa:bb:cc"),
		unit("A", "SN-A-dup", "", ""),
		nil,
	)

	assert.Equal(t, allocation.StateReady, s.State())
	assert.Equal(t, []string{"A", "C"}, ids(s.Visible()))
	assert.Equal(t, 2, s.Remaining())
}

func TestLoad_SoloUnaVez(t *testing.T) {
	s := openSession(t, 1, nil, unit("A", "SN-A", "", ""))
	_, err := s.Load(nil)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, allocation.StateReady, s.State())
}

// Escenario D: requiredCount = 1 y conjunto elegible vacío tras excluir -> cancelada sin selección.
func TestLoad_EscenarioD_ConjuntoVacioCancela(t *testing.T) {
	s, err := allocation.NewSession("sess-d", 1, []string{"A"})
	require.NoError(t, err)

	state, err := s.Load([]*entity.InventoryUnit{unit("A", "SN-A", "", "")})
	require.NoError(t, err, "el conjunto vacío no es un error")

	assert.Equal(t, allocation.StateCancelled, state)
	assert.Equal(t, allocation.ReasonEmptyEligibleSet, s.Reason())
	assert.Empty(t, s.Selected())
	_, err = s.Select("A")
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestFail_CancelaYEnvuelveLaCausa(t *testing.T) {
	s, err := allocation.NewSession("sess-f", 1, nil)
	require.NoError(t, err)

	cause := errors.New("timeout de red")
	err = s.Fail(cause)
	assert.ErrorIs(t, err, domain.ErrCandidateFetch)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, allocation.StateCancelled, s.State())
	assert.Equal(t, allocation.ReasonFetchFailed, s.Reason())
}

func TestOperacionesDuranteLoading(t *testing.T) {
	s, err := allocation.NewSession("sess-l", 1, nil)
	require.NoError(t, err)

	_, err = s.Select("A")
	assert.ErrorIs(t, err, domain.ErrSessionNotReady)
	assert.ErrorIs(t, s.Deselect("A"), domain.ErrSessionNotReady)
	_, err = s.Search("x")
	assert.ErrorIs(t, err, domain.ErrSessionNotReady)
	_, err = s.Confirm()
	assert.ErrorIs(t, err, domain.ErrSessionNotReady)

	// cancelar sí es posible mientras carga
	require.NoError(t, s.Cancel())
	assert.Equal(t, allocation.StateCancelled, s.State())
}

// ──────────────────────────────────────────────────────────────────────────────
// Selección
// ──────────────────────────────────────────────────────────────────────────────

// Escenario C: requiredCount = 2, candidatos [A, B, C], excluidos {B}; A luego C completa con [A, C].
func TestSelect_EscenarioC_AutoCompleta(t *testing.T) {
	s := openSession(t, 2, []string{"B"},
		unit("A", "SN-A", "", ""), unit("B", "SN-B", "", ""), unit("C", "SN-C", "", ""))
	require.Equal(t, []string{"A", "C"}, ids(s.Visible()))

	alloc, err := s.Select("A")
	require.NoError(t, err)
	assert.Nil(t, alloc)
	assert.Equal(t, allocation.StateSelecting, s.State())
	assert.Equal(t, []string{"C"}, ids(s.Visible()), "la unidad seleccionada sale del pool visible")

	alloc, err = s.Select("C")
	require.NoError(t, err)
	require.NotNil(t, alloc)
	assert.Equal(t, "sess-1", alloc.SessionID)
	assert.Equal(t, []string{"A", "C"}, ids(alloc.Units))

	assert.Equal(t, allocation.StateCompleted, s.State())
	assert.Empty(t, s.Selected(), "la sesión se reinicia al completar")
	_, err = s.Select("A")
	assert.ErrorIs(t, err, domain.ErrSessionClosed)
}

func TestSelect_Rechazos(t *testing.T) {
	s := openSession(t, 2, []string{"X"}, unit("A", "SN-A", "", ""), unit("B", "SN-B", "", ""))

	_, err := s.Select("A")
	require.NoError(t, err)

	_, err = s.Select("A")
	assert.ErrorIs(t, err, domain.ErrUnitAlreadySelected)
	assert.True(t, domain.IsSelectionRejected(err))

	_, err = s.Select("Z")
	assert.ErrorIs(t, err, domain.ErrUnitNotCandidate)

	_, err = s.Select("X")
	assert.ErrorIs(t, err, domain.ErrUnitNotCandidate, "un id excluido nunca es candidato")

	assert.Equal(t, []string{"A"}, ids(s.Selected()))
	assert.Equal(t, allocation.StateSelecting, s.State())
}

func TestDeselect_DevuelveAlPoolYVuelveAReady(t *testing.T) {
	s := openSession(t, 3, nil, unit("A", "SN-A", "", ""), unit("B", "SN-B", "", ""), unit("C", "SN-C", "", ""))

	_, err := s.Select("B")
	require.NoError(t, err)
	require.NoError(t, s.Deselect("C"), "quitar una unidad no seleccionada no es error")
	assert.Equal(t, []string{"B"}, ids(s.Selected()))

	require.NoError(t, s.Deselect("B"))
	assert.Empty(t, s.Selected())
	assert.Equal(t, allocation.StateReady, s.State())
	assert.Equal(t, []string{"A", "B", "C"}, ids(s.Visible()), "conserva el orden de la fuente")
}

// Tras cualquier secuencia de select/deselect: 0 <= |selected| <= required, sin duplicados ni excluidos.
func TestSelectDeselect_InvariantesDeCardinalidad(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pool := []string{"A", "B", "C", "D", "E", "F", "G"}
	excluded := []string{"C", "F"}

	for round := 0; round < 200; round++ {
		required := 1 + rng.Intn(4)
		units := make([]*entity.InventoryUnit, 0, len(pool))
		for _, id := range pool {
			units = append(units, unit(id, "SN-"+id, "", ""))
		}
		s := openSession(t, required, excluded, units...)

		for step := 0; step < 30 && !s.State().IsTerminal(); step++ {
			id := pool[rng.Intn(len(pool))]
			if rng.Intn(3) == 0 {
				require.NoError(t, s.Deselect(id))
			} else {
				alloc, err := s.Select(id)
				if alloc != nil {
					require.NoError(t, err)
					assert.Len(t, alloc.Units, required)
					assertNoDupNorExcluded(t, ids(alloc.Units), excluded)
					continue
				}
				if err != nil {
					assert.True(t, domain.IsSelectionRejected(err), "error inesperado: %v", err)
				}
			}
			sel := ids(s.Selected())
			assert.LessOrEqual(t, len(sel), required)
			assertNoDupNorExcluded(t, sel, excluded)
		}
	}
}

func assertNoDupNorExcluded(t *testing.T, got, excluded []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, id := range got {
		assert.False(t, seen[id], "duplicado %s", id)
		seen[id] = true
		assert.NotContains(t, excluded, id)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Búsqueda, confirmación y cancelación
// ──────────────────────────────────────────────────────────────────────────────

func TestSearch_FiltraSinMutar(t *testing.T) {
	s := openSession(t, 3, nil,
		unit("A", "SN-ABC-001", "", ""),
		unit("B", "", "356938035643809", ""),
		unit("C", "", "", "AA:BB:CC:DD:EE:FF"),
		unit("D", "sn-abc-002", "", ""),
	)

	got, err := s.Search("abc")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "D"}, ids(got), "sin distinguir mayúsculas")

	got, err = s.Search("cc:dd")
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, ids(got))

	got, err = s.Search("3569")
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, ids(got))

	// una unidad seleccionada no aparece en la vista filtrada
	_, err = s.Select("A")
	require.NoError(t, err)
	got, err = s.Search("ABC")
	require.NoError(t, err)
	assert.Equal(t, []string{"D"}, ids(got))
	assert.Equal(t, "ABC", s.SearchFilter())
	assert.Equal(t, []string{"D"}, ids(s.View()))

	// la búsqueda no toca candidatos ni selección
	assert.Equal(t, []string{"A"}, ids(s.Selected()))
	assert.Equal(t, []string{"B", "C", "D"}, ids(s.Visible()))

	got, err = s.Search("  ")
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "C", "D"}, ids(got), "término vacío muestra todo")
}

func TestConfirm_CantidadDistintaEsCountMismatch(t *testing.T) {
	s := openSession(t, 2, nil, unit("A", "SN-A", "", ""), unit("B", "SN-B", "", ""))
	_, err := s.Select("A")
	require.NoError(t, err)

	_, err = s.Confirm()
	assert.ErrorIs(t, err, domain.ErrCountMismatch)
	assert.Equal(t, allocation.StateSelecting, s.State(), "sin cambio de estado")
	assert.Equal(t, []string{"A"}, ids(s.Selected()))
}

func TestCancel(t *testing.T) {
	s := openSession(t, 2, nil, unit("A", "SN-A", "", ""), unit("B", "SN-B", "", ""))
	_, err := s.Select("A")
	require.NoError(t, err)

	require.NoError(t, s.Cancel())
	assert.Equal(t, allocation.StateCancelled, s.State())
	assert.Equal(t, allocation.ReasonUserCancelled, s.Reason())
	assert.Empty(t, s.Selected())
	require.NoError(t, s.Cancel(), "cancelar dos veces es idempotente")

	done := openSession(t, 1, nil, unit("A", "SN-A", "", ""))
	_, err = done.Select("A")
	require.NoError(t, err)
	assert.ErrorIs(t, done.Cancel(), domain.ErrSessionClosed)
}

// ──────────────────────────────────────────────────────────────────────────────
// Snapshot / Restore
// ──────────────────────────────────────────────────────────────────────────────

func TestRestore_ReconstruyeSesionEnCurso(t *testing.T) {
	s := openSession(t, 2, []string{"X"}, unit("A", "SN-A", "", ""), unit("B", "SN-B", "", ""))
	_, err := s.Select("B")
	require.NoError(t, err)
	_, err = s.Search("sn")
	require.NoError(t, err)

	restored, err := allocation.Restore(s.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, allocation.StateSelecting, restored.State())
	assert.Equal(t, []string{"B"}, ids(restored.Selected()))
	assert.Equal(t, "sn", restored.SearchFilter())
	assert.True(t, restored.IsExcluded("X"))

	alloc, err := restored.Select("A")
	require.NoError(t, err)
	require.NotNil(t, alloc)
	assert.Equal(t, []string{"B", "A"}, ids(alloc.Units))
}

func TestRestore_RechazaSnapshotInconsistente(t *testing.T) {
	snap := allocation.Snapshot{
		ID:            "s",
		RequiredCount: 1,
		ExcludedIDs:   []string{"A"},
		Candidates:    []entity.InventoryUnit{*unit("A", "SN-A", "", "")},
		SelectedIDs:   []string{"A"},
		State:         allocation.StateSelecting,
	}
	_, err := allocation.Restore(snap)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	snap.ExcludedIDs = nil
	snap.SelectedIDs = []string{"A", "A"}
	_, err = allocation.Restore(snap)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	snap.SelectedIDs = nil
	snap.State = "paused"
	_, err = allocation.Restore(snap)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
