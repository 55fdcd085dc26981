package database

import "context"

type txKey struct{}

// TxInfo carries the active transaction through the context, together with
// whether the unit of work that opened it is responsible for finishing it.
type TxInfo struct {
	Tx    Transaction
	Owned bool
}

// WithTx attaches a transaction to the context so that configuration, scoring
// and audit repositories called inside the same unit of work share it.
func WithTx(ctx context.Context, tx Transaction, owned bool) context.Context {
	return context.WithValue(ctx, txKey{}, TxInfo{Tx: tx, Owned: owned})
}

// TxFromContext returns the transaction attached to the context, or nil when
// the caller is running outside a unit of work.
func TxFromContext(ctx context.Context) Transaction {
	info, ok := ctx.Value(txKey{}).(TxInfo)
	if !ok || info.Tx == nil {
		return nil
	}
	return info.Tx
}

// TxInfoFromContext returns the attached transaction along with its ownership
// flag, used by nested units of work to avoid committing a borrowed transaction.
func TxInfoFromContext(ctx context.Context) (TxInfo, bool) {
	info, ok := ctx.Value(txKey{}).(TxInfo)
	if !ok || info.Tx == nil {
		return TxInfo{}, false
	}
	return info, true
}

// ExecutorFromContext picks the context transaction when one is present and
// falls back to the connection otherwise, so repository methods read and write
// the same way inside and outside a unit of work.
func ExecutorFromContext(ctx context.Context, conn Connection) Executor {
	if tx := TxFromContext(ctx); tx != nil {
		return tx
	}
	return conn
}
