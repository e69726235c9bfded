package checkout

import (
	"context"

	"github.com/jhoicas/pos-checkout/internal/domain/allocation"
)

// SessionStore guarda las sesiones de asignación abiertas entre peticiones HTTP.
// key incluye la empresa para que una sesión no sea visible desde otro tenant.
type SessionStore interface {
	Create(ctx context.Context, key string, s *allocation.Session) error
	// Get devuelve domain.ErrNotFound si la sesión no existe o expiró.
	Get(ctx context.Context, key string) (*allocation.Session, error)
	// Update carga la sesión, aplica fn y persiste el resultado de forma atómica respecto a
	// otras llamadas con la misma key. Si fn falla no se persiste nada, pero se devuelve la
	// sesión tal como quedó. Las sesiones terminales se eliminan en lugar de guardarse.
	Update(ctx context.Context, key string, fn func(*allocation.Session) error) (*allocation.Session, error)
	Delete(ctx context.Context, key string) error
}

// SessionKey arma la key de almacenamiento empresa:sesión.
func SessionKey(companyID, sessionID string) string {
	return companyID + ":" + sessionID
}
