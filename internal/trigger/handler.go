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

// Package trigger handles incoming incident-processing requests. The case
// filtering stage of the DRS POSTs one request per delinquent account; the
// handler acknowledges immediately and runs the pipeline in the background,
// one invocation per request.
package trigger

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/anupamamaheepala/call-API/internal/dedup"
	"github.com/anupamamaheepala/call-API/internal/pipeline"
)

// IncidentRequest is the trigger payload.
type IncidentRequest struct {
	AccountNum string `json:"account_num"`
	IncidentID int    `json:"incident_id"`
}

// Runner runs one incident pipeline invocation.
type Runner interface {
	Run(ctx context.Context, accountNum string, incidentID int) *pipeline.Result
}

// Filter suppresses duplicate triggers. Satisfied by *dedup.Filter.
type Filter interface {
	IsNew(ctx context.Context, key string) (bool, error)
}

// Handler processes incident trigger requests.
type Handler struct {
	runner Runner
	filter Filter // nil disables deduplication
}

// NewHandler creates a trigger handler.
func NewHandler(runner Runner, filter Filter) *Handler {
	return &Handler{
		runner: runner,
		filter: filter,
	}
}

// ServeIncident handles POST /incidents.
//
//   - Valid request → 202 Accepted, pipeline runs in the background
//   - Duplicate trigger → 200 OK with {"status": "duplicate"}
//   - Anything else → 4xx
func (h *Handler) ServeIncident(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	var req IncidentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	if req.AccountNum == "" || req.IncidentID <= 0 {
		http.Error(w, "account_num and a positive incident_id are required", http.StatusBadRequest)
		return
	}

	if h.filter != nil {
		isNew, err := h.filter.IsNew(r.Context(), dedup.Key(req.AccountNum, req.IncidentID))
		if err != nil {
			// Dedup is protective, not load-bearing; process anyway.
			slog.Warn("dedup check failed, proceeding", "error", err)
		} else if !isNew {
			slog.Info("skipping duplicate incident trigger",
				"account", req.AccountNum,
				"incident_id", req.IncidentID,
			)
			writeJSON(w, http.StatusOK, map[string]string{"status": "duplicate"})
			return
		}
	}

	slog.Info("incident trigger accepted",
		"account", req.AccountNum,
		"incident_id", req.IncidentID,
	)

	// Respond immediately — the scheduler expects a fast response.
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})

	go h.runner.Run(context.Background(), req.AccountNum, req.IncidentID)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
