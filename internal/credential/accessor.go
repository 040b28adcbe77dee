package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/loykin/servicecall/internal/common"
	"github.com/loykin/servicecall/internal/constants"
)

// Accessor reads and writes the encoded credential under a single key.
type Accessor struct {
	storage Storage
	codec   *Codec
	key     string
}

// NewAccessor binds storage and codec to the well-known auth key.
func NewAccessor(storage Storage, codec *Codec) *Accessor {
	return &Accessor{storage: storage, codec: codec, key: constants.AuthStorageKey}
}

// Key returns the storage key in use.
func (a *Accessor) Key() string { return a.key }

// Load returns the stored credential. A missing or undecodable blob yields
// ok=false; only storage failures are returned as errors.
func (a *Accessor) Load(ctx context.Context) (Credential, bool, error) {
	blob, err := a.storage.Get(ctx, a.key)
	if errors.Is(err, ErrNotFound) || (err == nil && blob == "") {
		return Credential{}, false, nil
	}
	if err != nil {
		return Credential{}, false, fmt.Errorf("credential: load: %w", err)
	}
	c, err := a.codec.Decode(blob)
	if err != nil {
		common.GetLogger().WithComponent("credential").Warn("discarding undecodable credential", "error", err)
		return Credential{}, false, nil
	}
	if c.IsZero() {
		return Credential{}, false, nil
	}
	return c, true, nil
}

// Save encodes and stores c.
func (a *Accessor) Save(ctx context.Context, c Credential) error {
	blob, err := a.codec.Encode(c)
	if err != nil {
		return err
	}
	if err := a.storage.Set(ctx, a.key, blob); err != nil {
		return fmt.Errorf("credential: save: %w", err)
	}
	return nil
}

// Clear removes the stored credential.
func (a *Accessor) Clear(ctx context.Context) error {
	if err := a.storage.Remove(ctx, a.key); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("credential: clear: %w", err)
	}
	return nil
}
