//go:build !linux

package wake

import "context"

// DBusCanceller is only available on linux.
type DBusCanceller struct{}

func NewDBusCanceller(ctx context.Context, scope Scope) (*DBusCanceller, error) {
	return nil, ErrUnsupported
}

func (c *DBusCanceller) Deregister(ctx context.Context, name TimerName) error {
	return ErrUnsupported
}

func (c *DBusCanceller) Close() error { return nil }
