package repository

import (
	"context"

	"github.com/jhoicas/pos-checkout/internal/domain/entity"
)

// UnitQuery filtros de la consulta de unidades serializadas candidatas.
type UnitQuery struct {
	CompanyID string
	ProductID string
	VariantID string // opcional
	BranchID  string // opcional
	Status    entity.UnitStatus
	Limit     int
}

// InventoryUnitRepository define el puerto de lectura de unidades serializadas (fuente de inventario externa).
// El orden del resultado es el de la fuente: más recientes primero.
type InventoryUnitRepository interface {
	ListAvailable(ctx context.Context, q UnitQuery) ([]*entity.InventoryUnit, error)
}
