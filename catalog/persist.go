package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"liora/catalog/storage"
)

// Open loads the catalog held by state, falling back to Default when the
// state has never been written.
func Open(ctx context.Context, state storage.State) (*Catalog, error) {
	data, err := state.Load(ctx)
	if err != nil {
		if storage.IsNotFound(err) {
			slog.Info("CATALOG: No stored catalog, using built-in defaults")
			return Default(), nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Decode(data)
}

// Save writes the catalog to state.
func Save(ctx context.Context, state storage.State, c *Catalog) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := state.Save(ctx, data); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}
