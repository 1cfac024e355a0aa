package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrymomot/adaptive/pkg/device"
	"github.com/dmitrymomot/adaptive/pkg/optimize"
)

// Snapshot is the persisted state of one client session: the detected
// device and the optimization config in effect when it was saved.
type Snapshot struct {
	Info    device.Info     `json:"info"`
	Config  optimize.Config `json:"config"`
	SavedAt time.Time       `json:"saved_at"`
}

//go:generate mockgen -source=snapshot.go -destination=mocks/mock_store.go -package=mock_snapshot

// Store persists snapshots by key. Implementations are safe for concurrent use.
type Store interface {
	// Save stores s under key, replacing any previous value.
	Save(ctx context.Context, key string, s Snapshot) error
	// Load returns the snapshot for key or ErrNotFound.
	Load(ctx context.Context, key string) (Snapshot, error)
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// New builds a snapshot stamped with the current time.
func New(info device.Info, cfg optimize.Config) Snapshot {
	return Snapshot{Info: info, Config: cfg, SavedAt: time.Now().UTC()}
}

func encode(s Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Join(ErrEncode, err)
	}
	return data, nil
}

func decode(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, errors.Join(ErrDecode, err)
	}
	return s, nil
}
