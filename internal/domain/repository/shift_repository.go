package repository

import "github.com/tindahan/pos-api/internal/domain/entity"

// ShiftRepository is the persistence port for Shift. GetOpenByUser enforces
// the one-open-shift-per-user invariant together with a partial unique index
// on (user_id) WHERE status = 'open'.
type ShiftRepository interface {
	Create(shift *entity.Shift) error
	GetByID(id string) (*entity.Shift, error)
	GetOpenByUser(userID string) (*entity.Shift, error)
	Update(shift *entity.Shift) error
	List(limit, offset int) ([]*entity.Shift, error)
}
