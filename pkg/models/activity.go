package models

import "time"

// Activity represents a scheduled or logged sales interaction, joined with
// its status, assignee, contact and organization display names.
type Activity struct {
	ID                int        `json:"id"`
	Name              string     `json:"name"`
	ActivityType      string     `json:"activity_type"`
	Title             *string    `json:"title"`
	StatusID          *int       `json:"status_id"`
	Priority          *string    `json:"priority"`
	ScheduledDate     *time.Time `json:"scheduled_date"`
	ScheduledTime     *string    `json:"scheduled_time"`
	AssignedToID      *int       `json:"assigned_to_id"`
	CreatedByID       *int       `json:"created_by_id"`
	Description       *string    `json:"description"`
	ReferenceDoctype  *string    `json:"reference_doctype"`
	ReferenceDocname  *string    `json:"reference_docname"`
	ContactPersonID   *int       `json:"contact_person_id"`
	OrganizationID    *int       `json:"organization_id"`
	CompletedOn       *time.Time `json:"completed_on"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at"`

	StatusName       *string `json:"status_name,omitempty"`
	AssignedToName   *string `json:"assigned_to_name,omitempty"`
	CreatedByName    *string `json:"created_by_name,omitempty"`
	ContactName      *string `json:"contact_name,omitempty"`
	OrganizationName *string `json:"organization_name,omitempty"`
	Company          *string `json:"company,omitempty"`

	TimelineType string     `json:"timeline_type,omitempty"`
	DisplayDate  *time.Time `json:"display_date,omitempty"`
}

// CallLog represents one logged phone call.
type CallLog struct {
	ID               int        `json:"id"`
	Name             string     `json:"name"`
	CallType         *string    `json:"call_type"`
	CallStatusID     *int       `json:"call_status_id"`
	CallDate         *time.Time `json:"call_date"`
	CallTime         *string    `json:"call_time"`
	CallOutcome      *string    `json:"call_outcome"`
	HandledByID      *int       `json:"handled_by_id"`
	CallerNumber     *string    `json:"caller_number"`
	ReceiverNumber   *string    `json:"receiver_number"`
	CallDuration     *int       `json:"call_duration"`
	CallSummary      *string    `json:"call_summary"`
	ReferenceDoctype *string    `json:"reference_doctype"`
	ReferenceDocname *string    `json:"reference_docname"`
	ContactPersonID  *int       `json:"contact_person_id"`
	OrganizationID   *int       `json:"organization_id"`
	CreatedAt        time.Time  `json:"created_at"`

	CallStatusName   *string `json:"call_status_name,omitempty"`
	HandledByName    *string `json:"handled_by_name,omitempty"`
	ContactName      *string `json:"contact_name,omitempty"`
	OrganizationName *string `json:"organization_name,omitempty"`

	TimelineType string     `json:"timeline_type,omitempty"`
	DisplayDate  *time.Time `json:"display_date,omitempty"`
}

// Note represents a free-form note attached to a reference document.
type Note struct {
	ID               int        `json:"id"`
	Title            *string    `json:"title"`
	Content          *string    `json:"content"`
	ReferenceDoctype *string    `json:"reference_doctype"`
	ReferenceDocname *string    `json:"reference_docname"`
	CreatedByID      *int       `json:"created_by_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at"`

	CreatedByName *string `json:"created_by_name,omitempty"`

	TimelineType string     `json:"timeline_type,omitempty"`
	DisplayDate  *time.Time `json:"display_date,omitempty"`
}

// ActivityListFilters are the optional, conjunctive filters of the
// activities list.
type ActivityListFilters struct {
	ActivityType      string `query:"activity_type"`
	Status            string `query:"status"`
	AssignedTo        string `query:"assigned_to"`
	ScheduledDateFrom string `query:"scheduled_date_from"`
	ScheduledDateTo   string `query:"scheduled_date_to"`
	Limit             int    `query:"limit"`
	Offset            int    `query:"offset"`
}

// CreateActivityRequest represents an activity create request
type CreateActivityRequest struct {
	ActivityType     *string `json:"activity_type"`
	Title            *string `json:"title"`
	Status           *string `json:"status"`
	Priority         *string `json:"priority"`
	ScheduledDate    *string `json:"scheduled_date"`
	ScheduledTime    *string `json:"scheduled_time"`
	AssignedToID     *int    `json:"assigned_to_id"`
	CreatedByID      *int    `json:"created_by_id"`
	Description      *string `json:"description"`
	ReferenceDoctype *string `json:"reference_doctype"`
	ReferenceDocname *string `json:"reference_docname"`
	ContactPersonID  *int    `json:"contact_person_id"`
	OrganizationID   *int    `json:"organization_id"`
}
