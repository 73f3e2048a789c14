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

// Package payload renders the incident document into its canonical wire
// form: pretty-printed UTF-8 JSON with key order fixed by the document's
// field order. By the time a document reaches this point every temporal and
// monetary value is already normalised text, so the wire schema carries no
// native date or float types.
package payload

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/anupamamaheepala/call-API/internal/models"
)

// Marshal serialises the document for transmission. It either converts every
// reachable value or fails; it never drops a field.
func Marshal(doc *models.Incident) ([]byte, error) {
	out, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode incident document: %w", err)
	}
	return out, nil
}
