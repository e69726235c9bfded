package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnitStatus estado de una unidad serializada en el inventario.
type UnitStatus string

const (
	UnitStatusAvailable UnitStatus = "available"
	UnitStatusReserved  UnitStatus = "reserved"
	UnitStatusSold      UnitStatus = "sold"
	UnitStatusDamaged   UnitStatus = "damaged"
	UnitStatusReturned  UnitStatus = "returned"
	UnitStatusInRepair  UnitStatus = "in_repair"
	UnitStatusWarranty  UnitStatus = "warranty"
)

// ParseUnitStatus convierte el valor almacenado en UnitStatus. Retorna false si no es conocido.
func ParseUnitStatus(s string) (UnitStatus, bool) {
	switch st := UnitStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case UnitStatusAvailable, UnitStatusReserved, UnitStatusSold, UnitStatusDamaged,
		UnitStatusReturned, UnitStatusInRepair, UnitStatusWarranty:
		return st, true
	}
	return "", false
}

// LineIdentifiers códigos que identifican físicamente la unidad (al menos uno para ser vendible).
type LineIdentifiers struct {
	Serial string
	IMEI   string
	MAC    string
}

// HasAny indica si la unidad tiene al menos un código no vacío.
func (l LineIdentifiers) HasAny() bool {
	return strings.TrimSpace(l.Serial) != "" ||
		strings.TrimSpace(l.IMEI) != "" ||
		strings.TrimSpace(l.MAC) != ""
}

// Display nombre visible de la unidad: serial, si no IMEI, si no MAC.
func (l LineIdentifiers) Display() string {
	for _, s := range []string{l.Serial, l.IMEI, l.MAC} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

// InventoryUnit representa una unidad física serializada (serial/IMEI/MAC) de un producto.
// Es propiedad de la fuente de inventario; la sesión de asignación solo guarda referencias temporales.
type InventoryUnit struct {
	ID           string
	CompanyID    string
	ProductID    string
	VariantID    string // vacío si el producto no tiene variantes
	BranchID     string
	Identifiers  LineIdentifiers
	Status       UnitStatus
	Condition    string // new, used, refurbished...
	Location     string
	SellingPrice decimal.Decimal // cero si la fuente no tiene precio por unidad
	CreatedAt    time.Time
}

// IsEligible indica si la unidad puede ofrecerse como candidata: disponible y con algún código.
func (u *InventoryUnit) IsEligible() bool {
	return u != nil && u.ID != "" && u.Status == UnitStatusAvailable && u.Identifiers.HasAny()
}
