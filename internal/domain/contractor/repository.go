package contractor

import (
	"context"
)

// Repository defines read access to contractor profiles.
// Creation and approval belong to the registration subsystem.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Profile, error)
	GetByChatID(ctx context.Context, chatID int64) (*Profile, error)
	ListWithChatID(ctx context.Context) ([]*Profile, error)
	ListAll(ctx context.Context) ([]*Profile, error)
}
