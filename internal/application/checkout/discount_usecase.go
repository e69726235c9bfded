package checkout

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/jhoicas/pos-checkout/internal/application/dto"
	"github.com/jhoicas/pos-checkout/internal/domain"
	"github.com/jhoicas/pos-checkout/internal/domain/pricing"
	"github.com/jhoicas/pos-checkout/pkg/metrics"
)

// Resultados de evaluación de descuento para métricas.
const (
	discountPreviewed = "previewed"
	discountApplied   = "applied"
	discountRejected  = "rejected"
	discountInvalid   = "invalid"
	discountCleared   = "cleared"
)

// DiscountUseCase evalúa descuentos a nivel de venta. No guarda estado: el orquestador del
// checkout conserva la DiscountApplication devuelta por Apply.
type DiscountUseCase struct {
	calc      pricing.Calculator
	formatter *pricing.Formatter
	metrics   *metrics.CheckoutMetrics
	log       zerolog.Logger
}

// NewDiscountUseCase construye el caso de uso.
func NewDiscountUseCase(calc pricing.Calculator, formatter *pricing.Formatter, m *metrics.CheckoutMetrics, log zerolog.Logger) *DiscountUseCase {
	return &DiscountUseCase{calc: calc, formatter: formatter, metrics: m, log: log}
}

// Preview calcula monto descontado y total final sin confirmar el descuento.
func (uc *DiscountUseCase) Preview(in dto.DiscountRequest) (*dto.DiscountPreviewResponse, error) {
	resp, err := uc.evaluate(in)
	if err != nil {
		return nil, err
	}
	uc.metrics.IncDiscount(resp.Kind, discountPreviewed)
	return resp, nil
}

// Apply valida el descuento y devuelve lo que el checkout debe guardar.
// Un descuento inválido no produce aplicación; el llamador conserva la anterior.
func (uc *DiscountUseCase) Apply(in dto.DiscountRequest) (*dto.DiscountApplyResponse, error) {
	resp, err := uc.evaluate(in)
	if err != nil {
		return nil, err
	}
	uc.metrics.IncDiscount(resp.Kind, discountApplied)
	uc.log.Info().
		Str("kind", resp.Kind).
		Str("value", resp.Value).
		Str("discount_amount", resp.DiscountAmount.String()).
		Msg("descuento aplicado")
	return &dto.DiscountApplyResponse{
		Application: dto.DiscountApplication{Kind: resp.Kind, Value: resp.Value},
		Result:      *resp,
	}, nil
}

// Clear devuelve la entrada a su estado inicial. Repetirlo da el mismo resultado.
func (uc *DiscountUseCase) Clear() *dto.DiscountClearedResponse {
	d := pricing.Clear()
	uc.metrics.IncDiscount(string(d.Kind), discountCleared)
	return &dto.DiscountClearedResponse{Cleared: true, Kind: string(d.Kind), Value: ""}
}

func (uc *DiscountUseCase) evaluate(in dto.DiscountRequest) (*dto.DiscountPreviewResponse, error) {
	if err := dto.Validate(in); err != nil {
		uc.metrics.IncDiscount(in.Kind, discountInvalid)
		return nil, err
	}
	kind, err := pricing.ParseKind(in.Kind)
	if err != nil {
		uc.metrics.IncDiscount(in.Kind, discountInvalid)
		return nil, err
	}
	d, res, err := uc.calc.Evaluate(kind, in.Value, in.BaseTotal)
	if err != nil {
		outcome := discountInvalid
		if domain.IsDiscountValidation(err) {
			outcome = discountRejected
		}
		uc.metrics.IncDiscount(string(kind), outcome)
		if !errors.Is(err, domain.ErrDiscountParse) {
			uc.log.Debug().Err(err).Str("kind", string(kind)).Str("value", in.Value).Msg("descuento rechazado")
		}
		return nil, err
	}
	return &dto.DiscountPreviewResponse{
		Kind:           string(d.Kind),
		Value:          d.Magnitude.String(),
		InputDisplay:   uc.formatter.Input(in.Value),
		BaseTotal:      in.BaseTotal,
		DiscountAmount: res.DiscountAmount,
		FinalTotal:     res.FinalTotal,
		Display: dto.AmountDisplay{
			BaseTotal:      uc.formatter.Amount(in.BaseTotal),
			DiscountAmount: uc.formatter.Amount(res.DiscountAmount),
			FinalTotal:     uc.formatter.Amount(res.FinalTotal),
		},
	}, nil
}
