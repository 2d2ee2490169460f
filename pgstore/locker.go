package pgstore

import (
	"context"
	"fmt"

	"github.com/etnz/finance"
)

// Lock takes a session level advisory lock on key, so that several processes
// sharing the database serialize their mutations like a single Ledger does.
//
// The lock holds a pooled connection until it is released.
func (s *Store) Lock(ctx context.Context, key string) (func(), error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot acquire connection to lock %s: %w", key, err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtext($1))`, key); err != nil {
		conn.Release()
		return nil, fmt.Errorf("cannot lock %s: %w", key, err)
	}
	return func() {
		if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock(hashtext($1))`, key); err != nil {
			s.log.Error().Err(err).Str("key", key).Msg("cannot release advisory lock")
			// a session lock dies with its connection
			conn.Conn().Close(context.Background())
		}
		conn.Release()
	}, nil
}

var _ finance.Locker = (*Store)(nil)
