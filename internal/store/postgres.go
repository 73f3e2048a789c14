// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Postgres is the production Source backed by the replicated BSS tables.
type Postgres struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

// NewPostgres creates a row source over the given pool. Every lookup runs
// under its own deadline so a stalled replica cannot hang the pipeline.
func NewPostgres(pool *pgxpool.Pool, queryTimeout time.Duration) *Postgres {
	if queryTimeout == 0 {
		queryTimeout = 10 * time.Second
	}
	return &Postgres{pool: pool, queryTimeout: queryTimeout}
}

// CustomerRows returns every debt_cust_detail row whose account number is an
// exact match.
func (p *Postgres) CustomerRows(ctx context.Context, accountNum string) ([]Row, error) {
	ctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx, `
		SELECT * FROM debt_cust_detail WHERE account_num = $1
	`, accountNum)
	if err != nil {
		return nil, fmt.Errorf("query debt_cust_detail: %w", err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// PaymentRows returns the most recent debt_payment row for the account, if
// any. The pipeline only ever needs the latest payment.
func (p *Postgres) PaymentRows(ctx context.Context, accountNum string) ([]Row, error) {
	ctx, cancel := context.WithTimeout(ctx, p.queryTimeout)
	defer cancel()

	rows, err := p.pool.Query(ctx, `
		SELECT * FROM debt_payment
		WHERE ap_account_number = $1
		ORDER BY account_payment_dat DESC
		LIMIT 1
	`, accountNum)
	if err != nil {
		return nil, fmt.Errorf("query debt_payment: %w", err)
	}
	defer rows.Close()

	return collectRows(rows)
}

// Ping checks the database connection.
func (p *Postgres) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.pool.Ping(ctx)
}

// collectRows drains a result set into generic rows with upper-cased column
// keys and driver values normalised into the handled scalar set.
func collectRows(rows pgx.Rows) ([]Row, error) {
	fields := rows.FieldDescriptions()

	var out []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("read row values: %w", err)
		}
		row := make(Row, len(fields))
		for i, fd := range fields {
			v, err := normalise(values[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", fd.Name, err)
			}
			row[strings.ToUpper(fd.Name)] = v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// normalise converts pgx driver types that have no place in a Row into the
// scalar set the accessors handle. NUMERIC comes back as pgtype.Numeric and
// must stay arbitrary-precision until the serialization boundary.
func normalise(v any) (any, error) {
	switch t := v.(type) {
	case pgtype.Numeric:
		if !t.Valid {
			return nil, nil
		}
		if t.NaN {
			return nil, fmt.Errorf("NUMERIC value is NaN")
		}
		return decimal.NewFromBigInt(t.Int, t.Exp), nil
	default:
		return v, nil
	}
}
