package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/pos-checkout/internal/domain"
	"github.com/jhoicas/pos-checkout/internal/domain/entity"
	"github.com/jhoicas/pos-checkout/internal/domain/repository"
)

var _ repository.InventoryUnitRepository = (*InventoryUnitRepo)(nil)

const maxUnitLimit = 500

// InventoryUnitRepo lectura de unidades serializadas desde la tabla inventory_items.
type InventoryUnitRepo struct {
	q Querier
}

// NewInventoryUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryUnitRepository(q Querier) *InventoryUnitRepo {
	return &InventoryUnitRepo{q: q}
}

// ListAvailable devuelve las unidades del producto (y variante/sucursal si vienen) con el estado pedido,
// más recientes primero y como máximo q.Limit filas.
func (r *InventoryUnitRepo) ListAvailable(ctx context.Context, q repository.UnitQuery) ([]*entity.InventoryUnit, error) {
	if q.CompanyID == "" || q.ProductID == "" {
		return nil, fmt.Errorf("%w: empresa y producto son obligatorios", domain.ErrInvalidInput)
	}
	status := q.Status
	if status == "" {
		status = entity.UnitStatusAvailable
	}
	limit := q.Limit
	if limit <= 0 || limit > maxUnitLimit {
		limit = maxUnitLimit
	}

	var sb strings.Builder
	sb.WriteString(`
		SELECT id::text, company_id::text, product_id::text, COALESCE(variant_id::text, ''), COALESCE(branch_id::text, ''),
		       COALESCE(serial_number, ''), COALESCE(imei, ''), COALESCE(mac_address, ''),
		       status::text, COALESCE(condition, ''), COALESCE(location, ''), COALESCE(selling_price, 0), created_at
		FROM inventory_items
		WHERE company_id = $1 AND product_id = $2 AND status = $3`)
	args := []any{q.CompanyID, q.ProductID, string(status)}
	if q.VariantID != "" {
		args = append(args, q.VariantID)
		fmt.Fprintf(&sb, " AND variant_id = $%d", len(args))
	}
	if q.BranchID != "" {
		args = append(args, q.BranchID)
		fmt.Fprintf(&sb, " AND branch_id = $%d", len(args))
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory units: %w", err)
	}
	defer rows.Close()

	var list []*entity.InventoryUnit
	for rows.Next() {
		var (
			u      entity.InventoryUnit
			status string
		)
		if err := rows.Scan(
			&u.ID, &u.CompanyID, &u.ProductID, &u.VariantID, &u.BranchID,
			&u.Identifiers.Serial, &u.Identifiers.IMEI, &u.Identifiers.MAC,
			&status, &u.Condition, &u.Location, &u.SellingPrice, &u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan inventory unit: %w", err)
		}
		u.Status = entity.UnitStatus(status)
		list = append(list, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory units: %w", err)
	}
	return list, nil
}
