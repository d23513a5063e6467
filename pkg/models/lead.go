package models

import "time"

// Lead represents a sales pipeline record with its join aliases. The
// duplicated fields (LeadName/Title/EmailID/Phone and the Territory alias)
// mirror the legacy response contract consumed by the frontend.
type Lead struct {
	ID                 int        `json:"id"`
	Name               string     `json:"name"`
	CompanyName        *string    `json:"company_name"`
	Industry           *string    `json:"industry"`
	Status             *string    `json:"status"`
	LeadOwnerID        *int       `json:"lead_owner_id"`
	AssignedToID       *int       `json:"assigned_to_id"`
	PrimaryContactID   *int       `json:"primary_contact_id"`
	PrimaryContactName *string    `json:"primary_contact_name"`
	PrimaryTitle       *string    `json:"primary_title"`
	PrimaryPhone       *string    `json:"primary_phone"`
	PrimaryEmail       *string    `json:"primary_email"`
	City               *string    `json:"city"`
	State              *string    `json:"state"`
	ZipCode            *string    `json:"zip_code"`
	TerritoryID        *int       `json:"territory_id"`
	OrganizationID     *int       `json:"organization_id"`
	CallbackDate       *time.Time `json:"callback_date"`
	CallbackTime       *string    `json:"callback_time"`
	AssignedDate       *time.Time `json:"assigned_date"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`

	// Join aliases
	AssignedToName             *string `json:"assigned_to_name"`
	LeadOwnerName              *string `json:"lead_owner_name"`
	TerritoryName              *string `json:"territory_name"`
	Territory                  *string `json:"territory,omitempty"`
	OrganizationName           *string `json:"organization_name"`
	PrimaryContactFullName     *string `json:"primary_contact_full_name"`
	PrimaryContactDesignation  *string `json:"primary_contact_designation"`

	// Legacy field aliases
	LeadName  *string `json:"lead_name,omitempty"`
	Title     *string `json:"title,omitempty"`
	EmailID   *string `json:"email_id,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	LeadOwner *string `json:"lead_owner,omitempty"`

	// Derived, never persisted
	QueueStatus  *string `json:"queue_status,omitempty"`
	QueueMessage *string `json:"queue_message,omitempty"`

	ContactPath []ContactPathStep `json:"contact_path,omitempty"`
}

// ContactPathStep is one ordered step of a lead's contact path.
type ContactPathStep struct {
	ContactName string `json:"contact_name"`
	Status      string `json:"status"`
	Sequence    int    `json:"sequence"`
}

// LeadListFilters are the optional, conjunctive filters of the leads list.
type LeadListFilters struct {
	StatusFilter string `query:"status_filter"`
	Territory    string `query:"territory"`
	Industry     string `query:"industry"`
	Owner        string `query:"owner"`
	SearchText   string `query:"search_text"`
	Limit        int    `query:"limit"`
	Start        int    `query:"start"`
}

// CreateLeadRequest represents a lead create request
type CreateLeadRequest struct {
	CompanyName        string  `json:"company_name"`
	Industry           *string `json:"industry"`
	Status             *string `json:"status"`
	OrganizationID     *int    `json:"organization_id"`
	TerritoryID        *int    `json:"territory_id"`
	PrimaryContactName *string `json:"primary_contact_name"`
	PrimaryTitle       *string `json:"primary_title"`
	PrimaryPhone       *string `json:"primary_phone"`
	PrimaryEmail       *string `json:"primary_email"`
	City               *string `json:"city"`
	State              *string `json:"state"`
	ZipCode            *string `json:"zip_code"`
}

// BulkAssignRequest assigns a set of leads by code to one user. UserID may
// be a numeric id or an email address.
type BulkAssignRequest struct {
	LeadNames []string `json:"lead_names"`
	UserID    any      `json:"user_id"`
}

// BulkStatusRequest moves a set of leads by code to one pipeline status.
type BulkStatusRequest struct {
	LeadNames []string `json:"lead_names"`
	Status    string   `json:"status"`
}

// BulkDeleteRequest deletes a set of leads by code.
type BulkDeleteRequest struct {
	LeadNames []string `json:"lead_names"`
}

// BulkResult reports how many rows a bulk mutation touched.
type BulkResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// PipelineCount is one bucket of the pipeline-counts view.
type PipelineCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}
