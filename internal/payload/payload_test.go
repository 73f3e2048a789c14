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

package payload

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/anupamamaheepala/call-API/internal/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// TestMarshalWireSchema verifies that a freshly defaulted document carries
// the complete field set with stable types: lists as [], subdocuments as
// objects, instants and money as text, and no nulls anywhere.
func TestMarshalWireSchema(t *testing.T) {
	doc := models.New("123456", 42, testNow)

	out, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if bytes.Contains(out, []byte("null")) {
		t.Error("wire document must not contain null values")
	}

	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("round-trip: %v", err)
	}

	wantKeys := []string{
		"Doc_Version", "Incident_Id", "Account_Num", "Arrears", "Created_By",
		"Created_Dtm", "Incident_Status", "Incident_Status_Dtm",
		"Status_Description", "File_Name_Dump", "Batch_Id", "Batch_Id_Tag_Dtm",
		"External_Data_Update_On", "Filtered_Reason", "Export_On",
		"File_Name_Rejected", "Rejected_Reason", "Incident_Forwarded_By",
		"Incident_Forwarded_On", "Contact_Details", "Product_Details",
		"Customer_Details", "Account_Details", "Last_Actions",
		"Marketing_Details", "Action", "Validity_period", "Remark",
		"updatedAt", "Rejected_By", "Rejected_Dtm", "Arrears_Band",
		"Source_Type",
	}
	for _, k := range wantKeys {
		if _, ok := decoded[k]; !ok {
			t.Errorf("missing wire field %q", k)
		}
	}
	if len(decoded) != len(wantKeys) {
		t.Errorf("wire field count = %d, want %d", len(decoded), len(wantKeys))
	}

	if v, ok := decoded["Incident_Id"].(float64); !ok || v != 42 {
		t.Errorf("Incident_Id = %v, want the number 42", decoded["Incident_Id"])
	}
	if v, ok := decoded["Created_Dtm"].(string); !ok || v != "2025-06-01T12:00:00" {
		t.Errorf("Created_Dtm = %v", decoded["Created_Dtm"])
	}
	if _, ok := decoded["Contact_Details"].([]any); !ok {
		t.Errorf("Contact_Details = %T, want an array", decoded["Contact_Details"])
	}
	if _, ok := decoded["Customer_Details"].(map[string]any); !ok {
		t.Errorf("Customer_Details = %T, want an object", decoded["Customer_Details"])
	}

	la, ok := decoded["Last_Actions"].(map[string]any)
	if !ok {
		t.Fatalf("Last_Actions = %T, want an object", decoded["Last_Actions"])
	}
	if v, ok := la["Payment_Money"].(string); !ok || v != "0" {
		t.Errorf("Payment_Money = %v, want the text \"0\"", la["Payment_Money"])
	}

	mk, ok := decoded["Marketing_Details"].(map[string]any)
	if !ok {
		t.Fatalf("Marketing_Details = %T, want an object", decoded["Marketing_Details"])
	}
	if mk["Informed_On"] != models.SentinelInstant {
		t.Errorf("Informed_On = %v, want sentinel", mk["Informed_On"])
	}
}

// TestMarshalKeyOrder verifies the canonical key ordering the receiver
// depends on.
func TestMarshalKeyOrder(t *testing.T) {
	doc := models.New("123456", 42, testNow)

	out, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	body := string(out)

	ordered := []string{
		`"Doc_Version"`,
		`"Incident_Id"`,
		`"Account_Num"`,
		`"Contact_Details"`,
		`"Product_Details"`,
		`"Customer_Details"`,
		`"Account_Details"`,
		`"Last_Actions"`,
		`"Marketing_Details"`,
		`"updatedAt"`,
		`"Source_Type"`,
	}
	last := -1
	for _, key := range ordered {
		idx := strings.Index(body, key)
		if idx < 0 {
			t.Fatalf("key %s missing from output", key)
		}
		if idx < last {
			t.Errorf("key %s out of order", key)
		}
		last = idx
	}
}

func TestMarshalPrettyPrinted(t *testing.T) {
	doc := models.New("123456", 42, testNow)

	out, err := Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if !strings.HasPrefix(string(out), "{\n    \"Doc_Version\"") {
		t.Errorf("output not indented as expected: %.40s", out)
	}
}
