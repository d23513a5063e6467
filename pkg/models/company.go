package models

import "time"

// Company represents a business record. Name/CompanyName and
// Industries/Industry are dual-mapped in responses so that both the legacy
// and the newer field names carry whichever source column is populated.
type Company struct {
	ID                    int        `json:"id"`
	CompanyName           *string    `json:"company_name"`
	Name                  *string    `json:"name,omitempty"`
	DoingBusinessAs       *string    `json:"doing_business_as"`
	Industry              *string    `json:"industry"`
	Industries            *string    `json:"industries,omitempty"`
	Status                *string    `json:"status"`
	TerritoryOwner        *string    `json:"territory_owner"`
	Mobile                *string    `json:"mobile"`
	Address               *string    `json:"address"`
	TerritoryManagerEmail *string    `json:"territory_manager_email"`
	Email                 *string    `json:"email"`
	MapAddress            *string    `json:"map_address"`
	FullAddress           *string    `json:"full_address"`
	LocationSummary       *string    `json:"location_summary"`
	ZipCode               *string    `json:"zip_code"`
	City                  *string    `json:"city"`
	State                 *string    `json:"state"`
	TerritoryID           *int       `json:"territory_id"`
	TruckCount            *int       `json:"truck_count"`
	DriverCount           *int       `json:"driver_count"`
	EmployeeCount         *int       `json:"employee_count"`
	AnnualRevenue         *float64   `json:"annual_revenue"`
	YearsInBusiness       *int       `json:"years_in_business"`
	BusinessType          *string    `json:"business_type"`
	OrganizationID        *int       `json:"organization_id"`
	CreatedByID           *int       `json:"created_by_id"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             *time.Time `json:"updated_at"`

	TerritoryName    *string `json:"territory_name,omitempty"`
	OrganizationName *string `json:"organization_name,omitempty"`
}

// CompanyListFilters are the optional filters of the companies list.
type CompanyListFilters struct {
	Search      string `query:"search"`
	Status      string `query:"status"`
	TerritoryID string `query:"territory_id"`
	Limit       int    `query:"limit"`
	Offset      int    `query:"offset"`
}

// CompanyRequest carries create/update input for a company. Name and
// Industries are accepted as aliases for CompanyName and Industry.
type CompanyRequest struct {
	CompanyName           *string  `json:"company_name"`
	Name                  *string  `json:"name"`
	DoingBusinessAs       *string  `json:"doing_business_as"`
	Industry              *string  `json:"industry"`
	Industries            *string  `json:"industries"`
	Status                *string  `json:"status"`
	TerritoryOwner        *string  `json:"territory_owner"`
	Mobile                *string  `json:"mobile"`
	Address               *string  `json:"address"`
	TerritoryManagerEmail *string  `json:"territory_manager_email"`
	Email                 *string  `json:"email"`
	MapAddress            *string  `json:"map_address"`
	FullAddress           *string  `json:"full_address"`
	LocationSummary       *string  `json:"location_summary"`
	ZipCode               *string  `json:"zip_code"`
	City                  *string  `json:"city"`
	State                 *string  `json:"state"`
	TerritoryID           *int     `json:"territory_id"`
	TruckCount            *int     `json:"truck_count"`
	DriverCount           *int     `json:"driver_count"`
	EmployeeCount         *int     `json:"employee_count"`
	AnnualRevenue         *float64 `json:"annual_revenue"`
	YearsInBusiness       *int     `json:"years_in_business"`
	BusinessType          *string  `json:"business_type"`
	OrganizationID        *int     `json:"organization_id"`
}

// BulkTerritoryRequest moves a set of companies into one territory.
type BulkTerritoryRequest struct {
	CompanyIDs  []int `json:"company_ids"`
	TerritoryID *int  `json:"territory_id"`
}
