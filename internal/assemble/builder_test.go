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
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/anupamamaheepala/call-API/internal/models"
	"github.com/anupamamaheepala/call-API/internal/store"
)

// fakeSource is an in-memory row source.
type fakeSource struct {
	customerRows []store.Row
	customerErr  error
	paymentRows  []store.Row
	paymentErr   error
}

func (f *fakeSource) CustomerRows(ctx context.Context, accountNum string) ([]store.Row, error) {
	return f.customerRows, f.customerErr
}

func (f *fakeSource) PaymentRows(ctx context.Context, accountNum string) ([]store.Row, error) {
	return f.paymentRows, f.paymentErr
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// customerRow returns a representative debt_cust_detail row. Overrides are
// applied on top; a nil override value removes the column.
func customerRow(overrides store.Row) store.Row {
	row := store.Row{
		"ACCOUNT_NUM":               "123456",
		"CUSTOMER_REF":              "CR-001",
		"CONTACT_PERSON":            "N. Perera",
		"ASSET_ADDRESS":             "12 Galle Road, Colombo",
		"ZIP_CODE":                  "00300",
		"NIC":                       int64(902345678),
		"CUSTOMER_TYPE_ID":          int64(3),
		"CUSTOMER_TYPE":             "residential",
		"CUSTOMER_TYPE_CAT":         "RES",
		"TECNICAL_CONTACT_EMAIL":    "n.perera@example.com",
		"MOBILE_CONTACT":            "0771234567",
		"WORK_CONTACT":              "0112345678",
		"LOAD_DATE":                 time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC),
		"ACCOUNT_STATUS_BSS":        "TERMINATED",
		"ACCOUNT_EFFECTIVE_DTM_BSS": time.Date(2021, 1, 15, 0, 0, 0, 0, time.UTC),
		"CREDIT_CLASS_ID":           int64(2),
		"CREDIT_CLASS_NAME":         "Standard",
		"BILLING_CENTER_NAME":       "Colombo Central",
		"CUSTOMER_SEGMENT_ID":       "SME",
		"EMAIL":                     "billing@example.com",
		"LAST_BILL_SEQ":             int64(118),
		"LAST_BILL_DTM":             time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		"LAST_PAYMENT_DAT":          time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		"LAST_PAYMENT_MNY":          decimal.RequireFromString("1500.50"),
		"PROMOTION_INTEG_ID":        "PROMO-9",
		"BSS_PRODUCT_SEQ":           int64(1),
		"ASSET_ID":                  "P1",
		"PRODUCT_NAME":              "Fibre 100",
		"ASSET_STATUS":              "AT",
		"OSS_SERVICE_ABBREVIATION":  "AB",
		"CITY":                      "Colombo",
		"PROVINCE":                  "Western",
	}
	for k, v := range overrides {
		if v == nil {
			delete(row, k)
			continue
		}
		row[k] = v
	}
	return row
}

func build(t *testing.T, src *fakeSource) *models.Incident {
	t.Helper()
	doc := models.New("123456", 42, testNow)
	if err := NewBuilder(src).Build(context.Background(), doc); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return doc
}

func TestBuildNotFound(t *testing.T) {
	src := &fakeSource{}
	doc := models.New("999999", 1, testNow)

	err := NewBuilder(src).Build(context.Background(), doc)
	if !errors.Is(err, ErrNoAccount) {
		t.Fatalf("error = %v, want ErrNoAccount", err)
	}
}

func TestBuildLookupError(t *testing.T) {
	src := &fakeSource{customerErr: errors.New("connection refused")}
	doc := models.New("123456", 42, testNow)

	err := NewBuilder(src).Build(context.Background(), doc)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNoAccount) {
		t.Fatal("lookup failure must be distinct from not-found")
	}
}

// TestBuildProductDedup verifies that products accumulate one entry per
// distinct asset id, in first-seen order, while customer data comes from the
// first row only.
func TestBuildProductDedup(t *testing.T) {
	src := &fakeSource{customerRows: []store.Row{
		customerRow(nil),
		customerRow(store.Row{"ASSET_ID": "P1", "CONTACT_PERSON": "Someone Else"}),
		customerRow(store.Row{"ASSET_ID": "P2", "PRODUCT_NAME": "PEO TV"}),
	}}

	doc := build(t, src)

	if len(doc.ProductDetails) != 2 {
		t.Fatalf("products = %d, want 2", len(doc.ProductDetails))
	}
	if doc.ProductDetails[0].ProductID != "P1" || doc.ProductDetails[1].ProductID != "P2" {
		t.Errorf("product order = %s, %s; want P1, P2",
			doc.ProductDetails[0].ProductID, doc.ProductDetails[1].ProductID)
	}
	if doc.ProductDetails[1].ProductName != "PEO TV" {
		t.Errorf("second product name = %q, want PEO TV", doc.ProductDetails[1].ProductName)
	}

	// One email, one mobile, one fix — from the first row only
	if len(doc.ContactDetails) != 3 {
		t.Fatalf("contacts = %d, want 3", len(doc.ContactDetails))
	}
	if doc.ContactDetails[0].Contact != "n.perera@example.com" {
		t.Errorf("email contact = %q", doc.ContactDetails[0].Contact)
	}
}

func TestBuildFirstRowWins(t *testing.T) {
	src := &fakeSource{customerRows: []store.Row{
		customerRow(store.Row{"CONTACT_PERSON": "First Customer"}),
		customerRow(store.Row{"CONTACT_PERSON": "Second Customer", "ASSET_ID": "P2"}),
	}}

	doc := build(t, src)

	if doc.CustomerDetails.CustomerName != "First Customer" {
		t.Errorf("Customer_Name = %q, want the first row's value", doc.CustomerDetails.CustomerName)
	}
}

func TestBuildCustomerAndAccountDetails(t *testing.T) {
	src := &fakeSource{customerRows: []store.Row{customerRow(nil)}}

	doc := build(t, src)

	cust := doc.CustomerDetails
	if cust.Nic != "902345678" {
		t.Errorf("Nic = %q, want text-coerced 902345678", cust.Nic)
	}
	if cust.CustomerTypeID != "3" {
		t.Errorf("Customer_Type_Id = %q, want 3", cust.CustomerTypeID)
	}

	acct := doc.AccountDetails
	if acct.AccEffectiveDtm != "2021-01-15T00:00:00" {
		t.Errorf("Acc_Effective_Dtm = %q", acct.AccEffectiveDtm)
	}
	if acct.AccActivateDate != models.SentinelInstant {
		t.Errorf("Acc_Activate_Date = %q, want sentinel", acct.AccActivateDate)
	}
	if acct.LastRatedDtm != models.SentinelInstant {
		t.Errorf("Last_Rated_Dtm = %q, want sentinel", acct.LastRatedDtm)
	}
	if acct.EmailAddress != "billing@example.com" {
		t.Errorf("Email_Address = %q", acct.EmailAddress)
	}
}

// TestBuildEmailWithoutAtSign pins the upstream behaviour for malformed
// email values: the entry is appended to keep contact ordering and counts,
// but with an empty contact value.
func TestBuildEmailWithoutAtSign(t *testing.T) {
	src := &fakeSource{customerRows: []store.Row{
		customerRow(store.Row{"TECNICAL_CONTACT_EMAIL": "not-an-email"}),
	}}

	doc := build(t, src)

	if len(doc.ContactDetails) != 3 {
		t.Fatalf("contacts = %d, want 3", len(doc.ContactDetails))
	}
	email := doc.ContactDetails[0]
	if email.ContactType != "email" {
		t.Fatalf("first contact type = %q, want email", email.ContactType)
	}
	if email.Contact != "" {
		t.Errorf("email contact = %q, want empty", email.Contact)
	}
}

func TestBuildSkipsAbsentContacts(t *testing.T) {
	src := &fakeSource{customerRows: []store.Row{
		customerRow(store.Row{
			"TECNICAL_CONTACT_EMAIL": nil, // column missing
			"MOBILE_CONTACT":         "",  // present but empty
		}),
	}}

	doc := build(t, src)

	if len(doc.ContactDetails) != 1 {
		t.Fatalf("contacts = %d, want 1", len(doc.ContactDetails))
	}
	if doc.ContactDetails[0].ContactType != "fix" {
		t.Errorf("contact type = %q, want fix", doc.ContactDetails[0].ContactType)
	}
}

func TestBuildLastActionsSeed(t *testing.T) {
	src := &fakeSource{customerRows: []store.Row{customerRow(nil)}}

	doc := build(t, src)

	la := doc.LastActions
	if la.BilledSeq != "118" {
		t.Errorf("Billed_Seq = %q, want 118", la.BilledSeq)
	}
	if la.PaymentCreated != "2025-04-02T00:00:00" {
		t.Errorf("Payment_Created = %q", la.PaymentCreated)
	}
	if la.PaymentMoney != "1500.5" || la.BilledAmount != "1500.5" {
		t.Errorf("money = %q / %q, want 1500.5", la.PaymentMoney, la.BilledAmount)
	}
	if la.PaymentSeq != "" {
		t.Errorf("Payment_Seq = %q, want empty until enrichment", la.PaymentSeq)
	}
}

func TestBuildLastActionsSkippedWithoutPaymentDate(t *testing.T) {
	src := &fakeSource{customerRows: []store.Row{
		customerRow(store.Row{"LAST_PAYMENT_DAT": nil}),
	}}

	doc := build(t, src)

	if doc.LastActions.PaymentMoney != "0" || doc.LastActions.BilledSeq != "" {
		t.Errorf("Last_Actions = %+v, want untouched defaults", doc.LastActions)
	}
}

func TestBuildUnhandledValueFailsFast(t *testing.T) {
	src := &fakeSource{customerRows: []store.Row{
		customerRow(store.Row{"CONTACT_PERSON": struct{ X int }{1}}),
	}}

	doc := models.New("123456", 42, testNow)
	err := NewBuilder(src).Build(context.Background(), doc)
	if !errors.Is(err, store.ErrNotSerializable) {
		t.Fatalf("error = %v, want ErrNotSerializable", err)
	}
}

// TestBuildDeterministic verifies that the same ordered rows always produce
// the same document.
func TestBuildDeterministic(t *testing.T) {
	rows := []store.Row{
		customerRow(nil),
		customerRow(store.Row{"ASSET_ID": "P2"}),
	}

	first := build(t, &fakeSource{customerRows: rows})
	second := build(t, &fakeSource{customerRows: rows})

	if !reflect.DeepEqual(first, second) {
		t.Error("documents differ for identical row sequences")
	}
}
