package interfaces

import (
	"context"

	"mt5-bridge/internal/types"
)

type Syncer interface {
	SyncAccount(ctx context.Context, p types.Participant) (*types.SyncResult, error)
}
