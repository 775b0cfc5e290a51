package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrTooLarge reports a template exceeding the configured byte limit.
var ErrTooLarge = errors.New("document loader: template exceeds size limit")

func loadReader(ctx context.Context, r io.Reader, limit int64) ([]byte, error) {
	if r == nil {
		return nil, errors.New("document loader: reader is nil")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return readLimited(r, limit)
}

// readLimited reads at most limit bytes and fails when r holds more.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return data, nil
}
