package checkout

import (
	"github.com/jhoicas/pos-checkout/internal/application/dto"
	"github.com/jhoicas/pos-checkout/internal/domain/allocation"
	"github.com/jhoicas/pos-checkout/internal/domain/entity"
)

func toUnitDTO(u entity.InventoryUnit) dto.InventoryUnitDTO {
	return dto.InventoryUnitDTO{
		ID:           u.ID,
		ProductID:    u.ProductID,
		VariantID:    u.VariantID,
		BranchID:     u.BranchID,
		Serial:       u.Identifiers.Serial,
		IMEI:         u.Identifiers.IMEI,
		MAC:          u.Identifiers.MAC,
		DisplayName:  u.Identifiers.Display(),
		Condition:    u.Condition,
		Location:     u.Location,
		SellingPrice: u.SellingPrice,
		CreatedAt:    u.CreatedAt,
	}
}

func toUnitDTOs(units []entity.InventoryUnit) []dto.InventoryUnitDTO {
	out := make([]dto.InventoryUnitDTO, 0, len(units))
	for _, u := range units {
		out = append(out, toUnitDTO(u))
	}
	return out
}

// toAllocationResponse vista de la sesión; candidates es el pool visible con el filtro vigente.
func toAllocationResponse(s *allocation.Session, alloc *allocation.Allocation) *dto.AllocationResponse {
	resp := &dto.AllocationResponse{
		SessionID:     s.ID(),
		State:         string(s.State()),
		Reason:        string(s.Reason()),
		RequiredCount: s.RequiredCount(),
		Remaining:     s.Remaining(),
		Search:        s.SearchFilter(),
		Selected:      toUnitDTOs(s.Selected()),
		Candidates:    toUnitDTOs(s.View()),
	}
	if alloc != nil {
		resp.Allocation = &dto.AllocationResultDTO{
			SessionID: alloc.SessionID,
			Units:     toUnitDTOs(alloc.Units),
		}
	}
	return resp
}
