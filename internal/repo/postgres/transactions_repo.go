package postgres

import (
	"github.com/geocoder89/coursehub/internal/domain/transaction"
	"github.com/geocoder89/coursehub/internal/observability"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TransactionsRepo struct {
	*table[transaction.Transaction, *transaction.Transaction]
}

func NewTransactionsRepo(pool *pgxpool.Pool, prom *observability.Prom) *TransactionsRepo {
	return &TransactionsRepo{&table[transaction.Transaction, *transaction.Transaction]{
		base: base{pool: pool, prom: prom},
		name: "transactions",
		cols: []column{
			{field: "title", name: "title"},
			{field: "description", name: "description"},
			{field: "category", name: "category"},
		},
		values: func(t *transaction.Transaction) []any {
			return []any{t.Title, t.Description, t.Category}
		},
		dests: func(t *transaction.Transaction) []any {
			return []any{&t.Title, &t.Description, &t.Category}
		},
	}}
}
