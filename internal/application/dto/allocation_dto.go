package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenAllocationRequest body para POST /api/checkout/allocations.
// ExcludedIDs son unidades ya comprometidas en otras líneas del mismo carrito.
type OpenAllocationRequest struct {
	ProductID     string   `json:"product_id" validate:"required"`
	VariantID     string   `json:"variant_id,omitempty"`
	BranchID      string   `json:"branch_id,omitempty"`
	RequiredCount int      `json:"required_count" validate:"required,min=1,max=1000"`
	ExcludedIDs   []string `json:"excluded_ids,omitempty" validate:"omitempty,dive,required"`
}

// SelectUnitRequest body para select/deselect.
type SelectUnitRequest struct {
	UnitID string `json:"unit_id" validate:"required"`
}

// InventoryUnitDTO unidad serializada en respuestas.
type InventoryUnitDTO struct {
	ID           string          `json:"id"`
	ProductID    string          `json:"product_id"`
	VariantID    string          `json:"variant_id,omitempty"`
	BranchID     string          `json:"branch_id,omitempty"`
	Serial       string          `json:"serial,omitempty"`
	IMEI         string          `json:"imei,omitempty"`
	MAC          string          `json:"mac,omitempty"`
	DisplayName  string          `json:"display_name"`
	Condition    string          `json:"condition,omitempty"`
	Location     string          `json:"location,omitempty"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	CreatedAt    time.Time       `json:"created_at"`
}

// AllocationResultDTO asignación final: exactamente required_count unidades en orden de selección.
type AllocationResultDTO struct {
	SessionID string             `json:"session_id"`
	Units     []InventoryUnitDTO `json:"units"`
}

// AllocationResponse vista de la sesión de asignación.
type AllocationResponse struct {
	SessionID     string               `json:"session_id"`
	State         string               `json:"state"`
	Reason        string               `json:"reason,omitempty"`
	RequiredCount int                  `json:"required_count"`
	Remaining     int                  `json:"remaining"`
	Search        string               `json:"search,omitempty"`
	Selected      []InventoryUnitDTO   `json:"selected"`
	Candidates    []InventoryUnitDTO   `json:"candidates"`
	Allocation    *AllocationResultDTO `json:"allocation,omitempty"`
}
