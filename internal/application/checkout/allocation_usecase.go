package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-checkout/internal/application/dto"
	"github.com/jhoicas/pos-checkout/internal/domain"
	"github.com/jhoicas/pos-checkout/internal/domain/allocation"
	"github.com/jhoicas/pos-checkout/internal/domain/entity"
	"github.com/jhoicas/pos-checkout/internal/domain/repository"
	"github.com/jhoicas/pos-checkout/pkg/metrics"
)

const (
	defaultCandidateLimit = 100
	defaultFetchTimeout   = 10 * time.Second
)

// AllocationConfig límites de la consulta de candidatos.
type AllocationConfig struct {
	CandidateLimit int
	FetchTimeout   time.Duration
}

// AllocationUseCase orquesta las sesiones de asignación de unidades serializadas:
// consulta candidatos, guarda la sesión entre peticiones y emite la asignación final.
type AllocationUseCase struct {
	units   repository.InventoryUnitRepository
	store   SessionStore
	cfg     AllocationConfig
	metrics *metrics.CheckoutMetrics
	log     zerolog.Logger
	newID   func() string
}

// NewAllocationUseCase construye el caso de uso. Límite o timeout en cero usan los valores por defecto.
func NewAllocationUseCase(
	units repository.InventoryUnitRepository,
	store SessionStore,
	cfg AllocationConfig,
	m *metrics.CheckoutMetrics,
	log zerolog.Logger,
) *AllocationUseCase {
	if cfg.CandidateLimit <= 0 {
		cfg.CandidateLimit = defaultCandidateLimit
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	return &AllocationUseCase{
		units:   units,
		store:   store,
		cfg:     cfg,
		metrics: m,
		log:     log,
		newID:   uuid.NewString,
	}
}

// Open abre una sesión para una línea del carrito y carga las unidades candidatas.
// Si no hay unidades elegibles la sesión se devuelve cancelada (empty_eligible_set) y no se guarda.
// Si la consulta falla se devuelve domain.ErrCandidateFetch; no hay reintento.
func (uc *AllocationUseCase) Open(ctx context.Context, companyID string, in dto.OpenAllocationRequest) (*dto.AllocationResponse, error) {
	if companyID == "" {
		return nil, fmt.Errorf("%w: empresa vacía", domain.ErrInvalidInput)
	}
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	sess, err := allocation.NewSession(uc.newID(), in.RequiredCount, in.ExcludedIDs)
	if err != nil {
		return nil, err
	}
	log := uc.log.With().
		Str("session_id", sess.ID()).
		Str("company_id", companyID).
		Str("product_id", in.ProductID).
		Int("required_count", in.RequiredCount).
		Logger()

	fetchCtx, cancel := context.WithTimeout(ctx, uc.cfg.FetchTimeout)
	defer cancel()
	start := time.Now()
	units, err := uc.units.ListAvailable(fetchCtx, repository.UnitQuery{
		CompanyID: companyID,
		ProductID: in.ProductID,
		VariantID: in.VariantID,
		BranchID:  in.BranchID,
		Status:    entity.UnitStatusAvailable,
		Limit:     uc.cfg.CandidateLimit,
	})
	uc.metrics.ObserveFetch(time.Since(start))
	if err != nil {
		uc.metrics.IncSession(metrics.OutcomeFetchFailed)
		log.Error().Err(err).Msg("falló la consulta de unidades candidatas")
		return nil, sess.Fail(err)
	}

	state, err := sess.Load(units)
	if err != nil {
		return nil, err
	}
	if state == allocation.StateCancelled {
		uc.metrics.IncSession(metrics.OutcomeEmpty)
		log.Info().Int("fetched", len(units)).Msg("sin unidades elegibles, sesión cancelada")
		return toAllocationResponse(sess, nil), nil
	}

	if err := uc.store.Create(ctx, SessionKey(companyID, sess.ID()), sess); err != nil {
		return nil, fmt.Errorf("guardar sesión: %w", err)
	}
	uc.metrics.IncSession(metrics.OutcomeOpened)
	log.Debug().Int("candidates", len(sess.Visible())).Msg("sesión de asignación abierta")
	return toAllocationResponse(sess, nil), nil
}

// Get devuelve la vista actual de la sesión.
func (uc *AllocationUseCase) Get(ctx context.Context, companyID, sessionID string) (*dto.AllocationResponse, error) {
	sess, err := uc.store.Get(ctx, SessionKey(companyID, sessionID))
	if err != nil {
		return nil, err
	}
	return toAllocationResponse(sess, nil), nil
}

// Search guarda el filtro de búsqueda de la sesión y devuelve la vista filtrada.
func (uc *AllocationUseCase) Search(ctx context.Context, companyID, sessionID, term string) (*dto.AllocationResponse, error) {
	sess, err := uc.store.Update(ctx, SessionKey(companyID, sessionID), func(s *allocation.Session) error {
		_, err := s.Search(term)
		return err
	})
	if err != nil {
		return nil, err
	}
	return toAllocationResponse(sess, nil), nil
}

// Select agrega una unidad. Al alcanzar la cantidad requerida la respuesta trae la asignación
// y la sesión deja de existir en el store.
func (uc *AllocationUseCase) Select(ctx context.Context, companyID, sessionID string, in dto.SelectUnitRequest) (*dto.AllocationResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	var alloc *allocation.Allocation
	sess, err := uc.store.Update(ctx, SessionKey(companyID, sessionID), func(s *allocation.Session) error {
		a, err := s.Select(in.UnitID)
		alloc = a
		return err
	})
	if err != nil {
		return nil, err
	}
	if alloc != nil {
		uc.completed(companyID, alloc)
	}
	return toAllocationResponse(sess, alloc), nil
}

// Deselect quita una unidad de la selección.
func (uc *AllocationUseCase) Deselect(ctx context.Context, companyID, sessionID string, in dto.SelectUnitRequest) (*dto.AllocationResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	sess, err := uc.store.Update(ctx, SessionKey(companyID, sessionID), func(s *allocation.Session) error {
		return s.Deselect(in.UnitID)
	})
	if err != nil {
		return nil, err
	}
	return toAllocationResponse(sess, nil), nil
}

// Confirm completa la sesión de forma explícita; exige exactamente la cantidad requerida.
func (uc *AllocationUseCase) Confirm(ctx context.Context, companyID, sessionID string) (*dto.AllocationResponse, error) {
	var alloc *allocation.Allocation
	sess, err := uc.store.Update(ctx, SessionKey(companyID, sessionID), func(s *allocation.Session) error {
		a, err := s.Confirm()
		alloc = a
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.completed(companyID, alloc)
	return toAllocationResponse(sess, alloc), nil
}

// Cancel descarta la sesión sin tocar la fuente de inventario.
func (uc *AllocationUseCase) Cancel(ctx context.Context, companyID, sessionID string) (*dto.AllocationResponse, error) {
	sess, err := uc.store.Update(ctx, SessionKey(companyID, sessionID), func(s *allocation.Session) error {
		return s.Cancel()
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.IncSession(metrics.OutcomeCancelled)
	uc.log.Info().Str("session_id", sessionID).Str("company_id", companyID).Msg("sesión de asignación cancelada")
	return toAllocationResponse(sess, nil), nil
}

func (uc *AllocationUseCase) completed(companyID string, alloc *allocation.Allocation) {
	uc.metrics.IncSession(metrics.OutcomeCompleted)
	ids := make([]string, 0, len(alloc.Units))
	for _, u := range alloc.Units {
		ids = append(ids, u.ID)
	}
	uc.log.Info().
		Str("session_id", alloc.SessionID).
		Str("company_id", companyID).
		Strs("unit_ids", ids).
		Msg("asignación completada")
}
