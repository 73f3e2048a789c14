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

// Package assemble folds relational rows into the canonical incident
// document. The fold is not commutative: customer, account, contact, and
// last-action data come from the first row only, while products accumulate
// across all rows with duplicates dropped by product id.
package assemble

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anupamamaheepala/call-API/internal/models"
	"github.com/anupamamaheepala/call-API/internal/store"
)

// ErrNoAccount reports that the account has no customer rows. It is a valid
// outcome, distinct from a lookup failure; the pipeline aborts without
// composing or transmitting anything.
var ErrNoAccount = errors.New("no customer details found for account")

// Builder populates an incident document from customer-detail rows.
type Builder struct {
	source store.Source
}

// NewBuilder creates a document builder over the given row source.
func NewBuilder(source store.Source) *Builder {
	return &Builder{source: source}
}

// Build looks up all customer rows for the document's account number and
// folds them into the document in their returned order.
func (b *Builder) Build(ctx context.Context, doc *models.Incident) error {
	rows, err := b.source.CustomerRows(ctx, doc.AccountNum)
	if err != nil {
		return fmt.Errorf("customer details lookup: %w", err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: %s", ErrNoAccount, doc.AccountNum)
	}

	seenProducts := make(map[string]struct{})
	populated := false

	for _, row := range rows {
		r := &reader{row: row}

		if !populated {
			b.applyContacts(r, doc)
			b.applyCustomer(r, doc)
			b.applyAccount(r, doc)
			b.applyLastActions(r, doc)
			populated = true
		}

		b.applyProduct(r, doc, seenProducts)

		if r.err != nil {
			return fmt.Errorf("fold customer row: %w", r.err)
		}
	}

	return nil
}

// applyContacts appends contact entries in the fixed order email → mobile →
// fix. An entry is appended only when the source value is present; for email
// the entry is appended even when the raw value lacks an "@", with an empty
// contact value. That mirrors the upstream system's long-standing behaviour,
// which downstream consumers rely on for contact ordering and counts.
func (b *Builder) applyContacts(r *reader, doc *models.Incident) {
	loadDate := r.instant("LOAD_DATE")

	if r.row.Has("TECNICAL_CONTACT_EMAIL") {
		email := r.str("TECNICAL_CONTACT_EMAIL")
		if !strings.Contains(email, "@") {
			email = ""
		}
		doc.ContactDetails = append(doc.ContactDetails, models.Contact{
			ContactType: "email",
			Contact:     email,
			CreateDtm:   loadDate,
			CreateBy:    models.CreatedBy,
		})
	}

	if r.row.Has("MOBILE_CONTACT") {
		doc.ContactDetails = append(doc.ContactDetails, models.Contact{
			ContactType: "mobile",
			Contact:     r.str("MOBILE_CONTACT"),
			CreateDtm:   loadDate,
			CreateBy:    models.CreatedBy,
		})
	}

	if r.row.Has("WORK_CONTACT") {
		doc.ContactDetails = append(doc.ContactDetails, models.Contact{
			ContactType: "fix",
			Contact:     r.str("WORK_CONTACT"),
			CreateDtm:   loadDate,
			CreateBy:    models.CreatedBy,
		})
	}
}

func (b *Builder) applyCustomer(r *reader, doc *models.Incident) {
	doc.CustomerDetails = models.Customer{
		CustomerName:   r.str("CONTACT_PERSON"),
		FullAddress:    r.str("ASSET_ADDRESS"),
		ZipCode:        r.str("ZIP_CODE"),
		Nic:            r.str("NIC"),
		CustomerTypeID: r.str("CUSTOMER_TYPE_ID"),
		CustomerType:   r.str("CUSTOMER_TYPE"),
	}
}

func (b *Builder) applyAccount(r *reader, doc *models.Incident) {
	doc.AccountDetails = models.Account{
		AccountStatus:   r.str("ACCOUNT_STATUS_BSS"),
		AccEffectiveDtm: r.instant("ACCOUNT_EFFECTIVE_DTM_BSS"),
		AccActivateDate: models.SentinelInstant,
		CreditClassID:   r.str("CREDIT_CLASS_ID"),
		CreditClassName: r.str("CREDIT_CLASS_NAME"),
		BillingCentre:   r.str("BILLING_CENTER_NAME"),
		CustomerSegment: r.str("CUSTOMER_SEGMENT_ID"),
		EmailAddress:    r.str("EMAIL"),
		LastRatedDtm:    models.SentinelInstant,
	}
}

// applyLastActions seeds the last-action summary from the customer row's
// embedded last-payment columns. The payment enricher may later replace the
// whole summary with a more authoritative payment record.
func (b *Builder) applyLastActions(r *reader, doc *models.Incident) {
	if !r.row.Has("LAST_PAYMENT_DAT") {
		return
	}
	money := r.money("LAST_PAYMENT_MNY")
	doc.LastActions = models.LastActions{
		BilledSeq:      r.str("LAST_BILL_SEQ"),
		BilledCreated:  r.instant("LAST_BILL_DTM"),
		PaymentSeq:     "",
		PaymentCreated: r.instant("LAST_PAYMENT_DAT"),
		PaymentMoney:   money,
		BilledAmount:   money,
	}
}

// applyProduct appends one product entry per distinct ASSET_ID, preserving
// first-seen order. Rows without an asset id contribute no product.
func (b *Builder) applyProduct(r *reader, doc *models.Incident, seen map[string]struct{}) {
	productID := r.str("ASSET_ID")
	if productID == "" {
		return
	}
	if _, dup := seen[productID]; dup {
		return
	}
	seen[productID] = struct{}{}

	doc.ProductDetails = append(doc.ProductDetails, models.Product{
		ProductLabel:   r.str("PROMOTION_INTEG_ID"),
		CustomerRef:    r.str("CUSTOMER_REF"),
		ProductSeq:     r.str("BSS_PRODUCT_SEQ"),
		ProductID:      productID,
		ProductName:    r.str("PRODUCT_NAME"),
		ProductStatus:  r.str("ASSET_STATUS"),
		EffectiveDtm:   r.instant("ACCOUNT_EFFECTIVE_DTM_BSS"),
		ServiceAddress: r.str("ASSET_ADDRESS"),
		Cat:            r.str("CUSTOMER_TYPE_CAT"),
		ServiceType:    r.str("OSS_SERVICE_ABBREVIATION"),
		Region:         r.str("CITY"),
		Province:       r.str("PROVINCE"),
	})
}

// reader wraps a row and records the first coercion failure so the fold can
// stay linear and report a single error at the end of each row.
type reader struct {
	row store.Row
	err error
}

func (r *reader) str(col string) string {
	if r.err != nil {
		return ""
	}
	v, err := r.row.Str(col)
	if err != nil {
		r.err = err
	}
	return v
}

func (r *reader) instant(col string) string {
	if r.err != nil {
		return ""
	}
	v, err := r.row.Instant(col)
	if err != nil {
		r.err = err
	}
	return v
}

func (r *reader) money(col string) string {
	if r.err != nil {
		return ""
	}
	v, err := r.row.Money(col)
	if err != nil {
		r.err = err
	}
	return v
}
