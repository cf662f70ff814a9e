package svs

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ReadTiles fetches the compressed tiles ids of a layer with at most
// workers reads in flight. Results are in the order of ids. The first
// failure cancels the remaining reads; a read already issued to storage is
// not interrupted.
func (r *Reader) ReadTiles(ctx context.Context, layer int, ids []int, workers int) ([][]byte, error) {
	return r.fetchTiles(ctx, layer, ids, workers, r.ReadTileCompressed)
}

// DecodeTiles is ReadTiles followed by decoding each tile.
func (r *Reader) DecodeTiles(ctx context.Context, layer int, ids []int, workers int) ([][]byte, error) {
	return r.fetchTiles(ctx, layer, ids, workers, r.ReadTile)
}

func (r *Reader) fetchTiles(ctx context.Context, layer int, ids []int, workers int, read func(layer, tile int) ([]byte, error)) ([][]byte, error) {
	if _, err := r.Layer(layer); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = 1
	}

	out := make([][]byte, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range ids {
		if gctx.Err() != nil {
			break
		}
		i, id := i, id
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := read(layer, id)
			if err != nil {
				return err
			}
			out[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The loop may have stopped early on a cancelled parent context.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
