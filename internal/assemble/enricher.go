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

package assemble

import (
	"context"
	"errors"
	"fmt"

	"github.com/anupamamaheepala/call-API/internal/models"
	"github.com/anupamamaheepala/call-API/internal/store"
)

// ErrNoPayments reports that the account has no payment history. Callers
// treat it like any other enrichment failure: the document keeps its
// builder-derived last actions.
var ErrNoPayments = errors.New("no payment rows found for account")

// Enricher augments a document's last-action summary with the most recent
// payment record. Enrichment is best effort; every failure is returned as an
// error value and never mutates the document.
type Enricher struct {
	source store.Source
}

// NewEnricher creates a payment enricher over the given row source.
func NewEnricher(source store.Source) *Enricher {
	return &Enricher{source: source}
}

// Enrich replaces the document's last actions wholesale with the latest
// payment row. Billing fields are cleared: the payment table is authoritative
// for the payment side only.
func (e *Enricher) Enrich(ctx context.Context, doc *models.Incident) error {
	rows, err := e.source.PaymentRows(ctx, doc.AccountNum)
	if err != nil {
		return fmt.Errorf("payment lookup: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: %s", ErrNoPayments, doc.AccountNum)
	}

	r := &reader{row: rows[0]}
	money := r.money("AP_ACCOUNT_PAYMENT_MNY")
	actions := models.LastActions{
		BilledSeq:      "",
		BilledCreated:  "",
		PaymentSeq:     r.str("ACCOUNT_PAYMENT_SEQ"),
		PaymentCreated: r.instant("ACCOUNT_PAYMENT_DAT"),
		PaymentMoney:   money,
		BilledAmount:   money,
	}
	if r.err != nil {
		return fmt.Errorf("fold payment row: %w", r.err)
	}

	doc.LastActions = actions
	return nil
}
