package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Healthcheck returns the readiness probe for pool. It fails when the
// server does not answer or when every connection of a full pool is busy,
// since a long poll acquiring one would then block until its deadline.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		st := pool.Stat()
		if st.MaxConns() > 0 && st.AcquiredConns() >= st.MaxConns() {
			return errors.Join(ErrHealthcheckFailed,
				fmt.Errorf("connection pool exhausted: %d/%d acquired", st.AcquiredConns(), st.MaxConns()))
		}
		return nil
	}
}
