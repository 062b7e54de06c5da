package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying transaction handle via `tx`.
//
// Use-case interfaces stay clean (no transaction types leaking out),
// while repository methods that accept a Tx can detect the handle
// implementation-side and run tx-bound Exec/Query as needed. The
// concrete type of `tx` is infra-defined (pgx.Tx for Postgres);
// repositories must gracefully accept nil for the non-transactional
// path.
//
// Billing operations mutate a service and its account as one unit of
// work, so they always run under WithTx with serializable isolation.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
