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

// Package pipeline sequences build → enrich → serialize → transmit for one
// (account, incident) pair. Build failures end the run before anything is
// composed or sent; enrichment failures only degrade the document; serialize
// failures abort before any network call; transmit gets a single attempt.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/anupamamaheepala/call-API/internal/assemble"
	"github.com/anupamamaheepala/call-API/internal/models"
	"github.com/anupamamaheepala/call-API/internal/payload"
	"github.com/anupamamaheepala/call-API/internal/store"
)

// State is the terminal state of one pipeline run.
type State string

const (
	StateDone           State = "done"
	StateNotFound       State = "not_found"
	StateBuildError     State = "build_error"
	StateSerializeError State = "serialize_error"
	StateSendFailed     State = "send_failed"
)

// Result summarises one completed run.
type Result struct {
	AccountNum string
	IncidentID int
	State      State
	Ack        map[string]any // parsed API acknowledgment, set on success
	Err        error
	Elapsed    time.Duration
}

// Succeeded reports terminal success: rows were found, the document was
// delivered, and the API acknowledged it.
func (r *Result) Succeeded() bool {
	return r.State == StateDone
}

// Deliverer transmits a serialised document and returns the parsed
// acknowledgment.
type Deliverer interface {
	Send(ctx context.Context, body []byte) (map[string]any, error)
}

// Notifier announces a delivered incident to downstream workers.
type Notifier interface {
	PublishIncidentProcessed(ctx context.Context, accountNum string, incidentID int, ack map[string]any) error
}

// Pipeline runs the incident flow. One document per invocation; no state is
// retained between runs.
type Pipeline struct {
	builder   *assemble.Builder
	enricher  *assemble.Enricher
	deliverer Deliverer
	notifier  Notifier // optional
	now       func() time.Time
}

// PipelineConfig holds dependencies for the pipeline.
type PipelineConfig struct {
	Source    store.Source
	Deliverer Deliverer
	Notifier  Notifier         // nil disables worker notices
	Now       func() time.Time // nil means time.Now
}

// New creates a pipeline.
func New(cfg PipelineConfig) *Pipeline {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		builder:   assemble.NewBuilder(cfg.Source),
		enricher:  assemble.NewEnricher(cfg.Source),
		deliverer: cfg.Deliverer,
		notifier:  cfg.Notifier,
		now:       now,
	}
}

// Run processes one incident end to end and always returns a Result; Err is
// set for every state other than done.
func (p *Pipeline) Run(ctx context.Context, accountNum string, incidentID int) *Result {
	start := time.Now()
	result := &Result{
		AccountNum: accountNum,
		IncidentID: incidentID,
	}

	slog.Info("processing incident",
		"account", accountNum,
		"incident_id", incidentID,
	)

	doc := models.New(accountNum, incidentID, p.now())

	if err := p.builder.Build(ctx, doc); err != nil {
		switch {
		case errors.Is(err, assemble.ErrNoAccount):
			slog.Error("no account data found — process terminated",
				"account", accountNum,
				"incident_id", incidentID,
			)
			result.State = StateNotFound
		case errors.Is(err, store.ErrNotSerializable):
			// A raw value outside the handled type set must never be
			// silently coerced into the document.
			slog.Error("incident document not serializable",
				"account", accountNum,
				"error", err,
			)
			result.State = StateSerializeError
		default:
			slog.Error("customer details retrieval failed",
				"account", accountNum,
				"error", err,
			)
			result.State = StateBuildError
		}
		result.Err = err
		result.Elapsed = time.Since(start)
		return result
	}

	// Best effort — the document keeps its builder-derived last actions
	// when no authoritative payment record exists.
	if err := p.enricher.Enrich(ctx, doc); err != nil {
		slog.Warn("payment enrichment failed, proceeding without it",
			"account", accountNum,
			"error", err,
		)
	}

	body, err := payload.Marshal(doc)
	if err != nil {
		slog.Error("incident document not serializable",
			"account", accountNum,
			"error", err,
		)
		result.State = StateSerializeError
		result.Err = err
		result.Elapsed = time.Since(start)
		return result
	}

	ack, err := p.deliverer.Send(ctx, body)
	if err != nil {
		slog.Error("failed to send incident to API",
			"account", accountNum,
			"incident_id", incidentID,
			"error", err,
		)
		result.State = StateSendFailed
		result.Err = err
		result.Elapsed = time.Since(start)
		return result
	}

	if p.notifier != nil {
		if err := p.notifier.PublishIncidentProcessed(ctx, accountNum, incidentID, ack); err != nil {
			slog.Warn("worker notice failed", "account", accountNum, "error", err)
		}
	}

	result.State = StateDone
	result.Ack = ack
	result.Elapsed = time.Since(start)

	slog.Info("incident processed successfully",
		"account", accountNum,
		"incident_id", incidentID,
		"products", len(doc.ProductDetails),
		"contacts", len(doc.ContactDetails),
		"elapsed", result.Elapsed,
	)

	return result
}
