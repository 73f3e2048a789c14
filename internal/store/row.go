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

// Package store executes the parametrized billing-system lookups and
// materialises result rows as generic column→value maps. The typed accessors
// on Row own the normalisation rules for the heterogeneous values a BSS
// schema hands back: absent columns, SQL NULLs, numeric identifiers stored
// as text and vice versa, native temporals, and arbitrary-precision money.
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anupamamaheepala/call-API/internal/models"
)

// ErrNotSerializable reports a raw database value outside the handled type
// set. Values must never be silently dropped or coerced past this point.
var ErrNotSerializable = errors.New("value not serializable")

// Source is the row-source contract: two parametrized lookups keyed by the
// exact account number. Zero rows is a valid result, distinct from failure.
type Source interface {
	// CustomerRows returns every customer-detail row for the account, in
	// the store's natural order.
	CustomerRows(ctx context.Context, accountNum string) ([]Row, error)

	// PaymentRows returns at most one payment row for the account, the most
	// recent payment first.
	PaymentRows(ctx context.Context, accountNum string) ([]Row, error)
}

// Row is one record returned by a lookup, keyed by upper-case column name.
// The BSS schema uses upper-case identifiers; Postgres folds unquoted names
// to lower case, so sources upper-case keys when building rows.
type Row map[string]any

// Str returns the column value coerced to text. Absent columns and SQL NULLs
// yield the empty string. Numeric identifiers (NIC, credit class ids,
// sequence numbers) are force-coerced so the wire schema's field types stay
// stable regardless of the source column type.
func (r Row) Str(col string) (string, error) {
	v, ok := r[col]
	if !ok || v == nil {
		return "", nil
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	case int:
		return strconv.Itoa(t), nil
	case int16:
		return strconv.FormatInt(int64(t), 10), nil
	case int32:
		return strconv.FormatInt(int64(t), 10), nil
	case int64:
		return strconv.FormatInt(t, 10), nil
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), nil
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), nil
	case decimal.Decimal:
		return t.String(), nil
	case time.Time:
		return t.Format(models.InstantLayout), nil
	default:
		return "", fmt.Errorf("%w: column %s holds %T", ErrNotSerializable, col, v)
	}
}

// Instant returns the column value as a second-precision ISO-8601 string.
// Absent columns and NULLs yield the empty string, never a raw temporal.
func (r Row) Instant(col string) (string, error) {
	v, ok := r[col]
	if !ok || v == nil {
		return "", nil
	}
	switch t := v.(type) {
	case time.Time:
		return t.Format(models.InstantLayout), nil
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	default:
		return "", fmt.Errorf("%w: column %s holds %T, want a temporal", ErrNotSerializable, col, v)
	}
}

// Money returns the column value as decimal text via the nearest
// double-precision form. A missing, NULL, or zero amount yields "0".
// The float narrowing is a deliberate interoperability trade-off with the
// receiving system; it is confined to this function.
func (r Row) Money(col string) (string, error) {
	v, ok := r[col]
	if !ok || v == nil {
		return "0", nil
	}
	var f float64
	switch t := v.(type) {
	case decimal.Decimal:
		f = t.InexactFloat64()
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int32:
		f = float64(t)
	case int64:
		f = float64(t)
	case string:
		if t == "" {
			return "0", nil
		}
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return "", fmt.Errorf("%w: column %s holds non-numeric text %q", ErrNotSerializable, col, t)
		}
		f = parsed
	case []byte:
		if len(t) == 0 {
			return "0", nil
		}
		parsed, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return "", fmt.Errorf("%w: column %s holds non-numeric text %q", ErrNotSerializable, col, t)
		}
		f = parsed
	default:
		return "", fmt.Errorf("%w: column %s holds %T, want an amount", ErrNotSerializable, col, v)
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}

// Has reports whether the column is present with a non-empty value. It is
// the gate for optional contact entries: a present-but-empty source value is
// treated the same as an absent column.
func (r Row) Has(col string) bool {
	v, ok := r[col]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case string:
		return t != ""
	case []byte:
		return len(t) != 0
	default:
		return true
	}
}
