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
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anupamamaheepala/call-API/internal/models"
	"github.com/anupamamaheepala/call-API/internal/store"
)

func paymentRow() store.Row {
	return store.Row{
		"AP_ACCOUNT_NUMBER":      "123456",
		"ACCOUNT_PAYMENT_SEQ":    int64(9912),
		"ACCOUNT_PAYMENT_DAT":    time.Date(2025, 5, 28, 14, 5, 0, 0, time.UTC),
		"AP_ACCOUNT_PAYMENT_MNY": decimal.RequireFromString("2750.25"),
	}
}

// TestEnrichReplacesLastActionsWholesale verifies that a payment record
// replaces all six last-action fields, clearing the billing side.
func TestEnrichReplacesLastActionsWholesale(t *testing.T) {
	src := &fakeSource{paymentRows: []store.Row{paymentRow()}}

	doc := models.New("123456", 42, testNow)
	doc.LastActions = models.LastActions{
		BilledSeq:      "118",
		BilledCreated:  "2025-04-30T00:00:00",
		PaymentCreated: "2025-04-02T00:00:00",
		PaymentMoney:   "1500.5",
		BilledAmount:   "1500.5",
	}

	if err := NewEnricher(src).Enrich(context.Background(), doc); err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	want := models.LastActions{
		BilledSeq:      "",
		BilledCreated:  "",
		PaymentSeq:     "9912",
		PaymentCreated: "2025-05-28T14:05:00",
		PaymentMoney:   "2750.25",
		BilledAmount:   "2750.25",
	}
	if doc.LastActions != want {
		t.Errorf("Last_Actions = %+v, want %+v", doc.LastActions, want)
	}
}

func TestEnrichNoPaymentHistory(t *testing.T) {
	src := &fakeSource{}

	doc := models.New("123456", 42, testNow)
	seeded := models.LastActions{BilledSeq: "118", PaymentMoney: "1500.5", BilledAmount: "1500.5"}
	doc.LastActions = seeded

	err := NewEnricher(src).Enrich(context.Background(), doc)
	if !errors.Is(err, ErrNoPayments) {
		t.Fatalf("error = %v, want ErrNoPayments", err)
	}
	if doc.LastActions != seeded {
		t.Error("failed enrichment must not mutate the document")
	}
}

func TestEnrichLookupFailure(t *testing.T) {
	src := &fakeSource{paymentErr: errors.New("connection refused")}

	doc := models.New("123456", 42, testNow)
	if err := NewEnricher(src).Enrich(context.Background(), doc); err == nil {
		t.Fatal("expected error")
	}
	if doc.LastActions.PaymentMoney != "0" {
		t.Error("failed enrichment must leave defaults intact")
	}
}

func TestEnrichMissingAmountDefaultsToZero(t *testing.T) {
	row := paymentRow()
	delete(row, "AP_ACCOUNT_PAYMENT_MNY")
	src := &fakeSource{paymentRows: []store.Row{row}}

	doc := models.New("123456", 42, testNow)
	if err := NewEnricher(src).Enrich(context.Background(), doc); err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	if doc.LastActions.PaymentMoney != "0" || doc.LastActions.BilledAmount != "0" {
		t.Errorf("money = %q / %q, want 0", doc.LastActions.PaymentMoney, doc.LastActions.BilledAmount)
	}
}

func TestEnrichBadPaymentRow(t *testing.T) {
	row := paymentRow()
	row["AP_ACCOUNT_PAYMENT_MNY"] = "not-a-number"
	src := &fakeSource{paymentRows: []store.Row{row}}

	doc := models.New("123456", 42, testNow)
	err := NewEnricher(src).Enrich(context.Background(), doc)
	if !errors.Is(err, store.ErrNotSerializable) {
		t.Fatalf("error = %v, want ErrNotSerializable", err)
	}
	if doc.LastActions.PaymentSeq != "" {
		t.Error("failed enrichment must not partially mutate the document")
	}
}
