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

// Package models defines the canonical incident document assembled for the
// debt-recovery API.
package models

import "time"

const (
	// DocVersion is the schema version the receiving API expects.
	DocVersion = "1.0"

	// CreatedBy is the fixed operator identity stamped on documents and
	// contact entries produced by this service.
	CreatedBy = "drs_admin"

	// InstantLayout is the textual form of every timestamp in the document:
	// second-precision ISO-8601 with no zone designator.
	InstantLayout = "2006-01-02T15:04:05"

	// SentinelInstant is the placeholder used where no real date is known.
	SentinelInstant = "1900-01-01T00:00:00"
)

// Contact is one entry in the document's contact list.
type Contact struct {
	ContactType string `json:"Contact_Type"`
	Contact     string `json:"Contact"`
	CreateDtm   string `json:"Create_Dtm"`
	CreateBy    string `json:"Create_By"`
}

// Product is one entry in the document's product list, keyed by Product_Id.
type Product struct {
	ProductLabel          string `json:"Product_Label"`
	CustomerRef           string `json:"Customer_Ref"`
	ProductSeq            string `json:"Product_Seq"`
	EquipmentOwnership    string `json:"Equipment_Ownership"`
	ProductID             string `json:"Product_Id"`
	ProductName           string `json:"Product_Name"`
	ProductStatus         string `json:"Product_Status"`
	EffectiveDtm          string `json:"Effective_Dtm"`
	ServiceAddress        string `json:"Service_Address"`
	Cat                   string `json:"Cat"`
	DbCpeStatus           string `json:"Db_Cpe_Status"`
	ReceivedListCpeStatus string `json:"Received_List_Cpe_Status"`
	ServiceType           string `json:"Service_Type"`
	Region                string `json:"Region"`
	Province              string `json:"Province"`
}

// Customer holds the single customer subdocument.
type Customer struct {
	CustomerName          string `json:"Customer_Name"`
	CompanyName           string `json:"Company_Name"`
	CompanyRegistryNumber string `json:"Company_Registry_Number"`
	FullAddress           string `json:"Full_Address"`
	ZipCode               string `json:"Zip_Code"`
	CustomerTypeName      string `json:"Customer_Type_Name"`
	Nic                   string `json:"Nic"`
	CustomerTypeID        string `json:"Customer_Type_Id"`
	CustomerType          string `json:"Customer_Type"`
}

// Account holds the single account subdocument.
type Account struct {
	AccountStatus     string `json:"Account_Status"`
	AccEffectiveDtm   string `json:"Acc_Effective_Dtm"`
	AccActivateDate   string `json:"Acc_Activate_Date"`
	CreditClassID     string `json:"Credit_Class_Id"`
	CreditClassName   string `json:"Credit_Class_Name"`
	BillingCentre     string `json:"Billing_Centre"`
	CustomerSegment   string `json:"Customer_Segment"`
	MobileContactTel  string `json:"Mobile_Contact_Tel"`
	DaytimeContactTel string `json:"Daytime_Contact_Tel"`
	EmailAddress      string `json:"Email_Address"`
	LastRatedDtm      string `json:"Last_Rated_Dtm"`
}

// LastActions summarises the most recent billing and payment activity.
// All monetary values are decimal-valued text, never native floats.
type LastActions struct {
	BilledSeq      string `json:"Billed_Seq"`
	BilledCreated  string `json:"Billed_Created"`
	PaymentSeq     string `json:"Payment_Seq"`
	PaymentCreated string `json:"Payment_Created"`
	PaymentMoney   string `json:"Payment_Money"`
	BilledAmount   string `json:"Billed_Amount"`
}

// Marketing is a stable contract field. No upstream source currently
// populates it, but the receiver requires its presence.
type Marketing struct {
	AccountManager string `json:"ACCOUNT_MANAGER"`
	ConsumerMarket string `json:"CONSUMER_MARKET"`
	InformedTo     string `json:"Informed_To"`
	InformedOn     string `json:"Informed_On"`
}

// Incident is the root document transmitted to the incident API, one per
// (account, incident) pair.
//
// Field order and JSON names are the payload contract with the receiver and
// must not change, including fields that are always empty in current usage.
type Incident struct {
	DocVersion           string      `json:"Doc_Version"`
	IncidentID           int         `json:"Incident_Id"`
	AccountNum           string      `json:"Account_Num"`
	Arrears              int         `json:"Arrears"`
	CreatedBy            string      `json:"Created_By"`
	CreatedDtm           string      `json:"Created_Dtm"`
	IncidentStatus       string      `json:"Incident_Status"`
	IncidentStatusDtm    string      `json:"Incident_Status_Dtm"`
	StatusDescription    string      `json:"Status_Description"`
	FileNameDump         string      `json:"File_Name_Dump"`
	BatchID              string      `json:"Batch_Id"`
	BatchIDTagDtm        string      `json:"Batch_Id_Tag_Dtm"`
	ExternalDataUpdateOn string      `json:"External_Data_Update_On"`
	FilteredReason       string      `json:"Filtered_Reason"`
	ExportOn             string      `json:"Export_On"`
	FileNameRejected     string      `json:"File_Name_Rejected"`
	RejectedReason       string      `json:"Rejected_Reason"`
	IncidentForwardedBy  string      `json:"Incident_Forwarded_By"`
	IncidentForwardedOn  string      `json:"Incident_Forwarded_On"`
	ContactDetails       []Contact   `json:"Contact_Details"`
	ProductDetails       []Product   `json:"Product_Details"`
	CustomerDetails      Customer    `json:"Customer_Details"`
	AccountDetails       Account     `json:"Account_Details"`
	LastActions          LastActions `json:"Last_Actions"`
	MarketingDetails     Marketing   `json:"Marketing_Details"`
	Action               string      `json:"Action"`
	ValidityPeriod       string      `json:"Validity_period"`
	Remark               string      `json:"Remark"`
	UpdatedAt            string      `json:"updatedAt"`
	RejectedBy           string      `json:"Rejected_By"`
	RejectedDtm          string      `json:"Rejected_Dtm"`
	ArrearsBand          string      `json:"Arrears_Band"`
	SourceType           string      `json:"Source_Type"`
}

// New returns an incident document with every field set to its documented
// default. The result is deterministic given the arguments: audit instants
// come from now, free-text fields are empty strings, money is "0", unknown
// dates are the sentinel, and both lists marshal as [] rather than null.
func New(accountNum string, incidentID int, now time.Time) *Incident {
	stamp := now.Format(InstantLayout)
	return &Incident{
		DocVersion:           DocVersion,
		IncidentID:           incidentID,
		AccountNum:           accountNum,
		Arrears:              0,
		CreatedBy:            CreatedBy,
		CreatedDtm:           stamp,
		IncidentStatusDtm:    stamp,
		BatchIDTagDtm:        stamp,
		ExternalDataUpdateOn: stamp,
		ExportOn:             stamp,
		IncidentForwardedOn:  stamp,
		ContactDetails:       []Contact{},
		ProductDetails:       []Product{},
		LastActions: LastActions{
			PaymentMoney: "0",
			BilledAmount: "0",
		},
		MarketingDetails: Marketing{
			InformedOn: SentinelInstant,
		},
		ValidityPeriod: "0",
		UpdatedAt:      stamp,
		RejectedDtm:    stamp,
	}
}
