package store

import (
	"context"
	"fmt"

	"github.com/novachat/nova-chat/pkg/chat"
	"github.com/novachat/nova-chat/pkg/model"
)

// Unavailable is the store used when no Scylla session could be opened at
// startup. Every call fails with ErrStoreUnavailable, which keeps the whole
// service on its fallback-buffer path instead of refusing to boot.
type Unavailable struct{}

var _ chat.Store = Unavailable{}

func (Unavailable) Insert(context.Context, model.Message) (model.Message, error) {
	return model.Message{}, fmt.Errorf("%w: no session", chat.ErrStoreUnavailable)
}

func (Unavailable) SelectRecent(context.Context, int) ([]model.Message, error) {
	return nil, fmt.Errorf("%w: no session", chat.ErrStoreUnavailable)
}

func (Unavailable) DeleteByID(context.Context, int64) (bool, error) {
	return false, fmt.Errorf("%w: no session", chat.ErrStoreUnavailable)
}
