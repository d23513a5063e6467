package models

import "time"

// Territory represents a named sales region together with its dependent
// owner and zip-code collections.
type Territory struct {
	ID                    int        `json:"id"`
	TerritoryName         string     `json:"territory_name"`
	DoingBusinessAs       *string    `json:"doing_business_as"`
	Status                *string    `json:"status"`
	TerritoryOwner        *string    `json:"territory_owner"`
	Mobile                *string    `json:"mobile"`
	Address               *string    `json:"address"`
	TerritoryManagerEmail *string    `json:"territory_manager_email"`
	Email                 *string    `json:"email"`
	MapAddress            *string    `json:"map_address"`
	Description           *string    `json:"description"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             *time.Time `json:"updated_at"`

	Owners   []TerritoryOwner   `json:"owners"`
	ZipCodes []TerritoryZipCode `json:"zip_codes"`
}

// TerritoryOwner is one human owner of a territory.
type TerritoryOwner struct {
	ID          int     `json:"id,omitempty"`
	TerritoryID int     `json:"territory_id,omitempty"`
	OwnerName   string  `json:"owner_name"`
	OwnerEmail  *string `json:"owner_email"`
	OwnerPhone  *string `json:"owner_phone"`
}

// TerritoryZipCode is one zip code covered by a territory.
type TerritoryZipCode struct {
	ID          int     `json:"id,omitempty"`
	TerritoryID int     `json:"territory_id,omitempty"`
	ZipCode     string  `json:"zip_code"`
	City        *string `json:"city"`
	State       *string `json:"state"`
}

// TerritoryRequest carries create/update input for a territory. The child
// collections use replace-all semantics: a present key (even empty) replaces
// every existing child row, an absent key leaves children untouched.
type TerritoryRequest struct {
	TerritoryName         *string             `json:"territory_name"`
	DoingBusinessAs       *string             `json:"doing_business_as"`
	Status                *string             `json:"status"`
	TerritoryOwner        *string             `json:"territory_owner"`
	Mobile                *string             `json:"mobile"`
	Address               *string             `json:"address"`
	TerritoryManagerEmail *string             `json:"territory_manager_email"`
	Email                 *string             `json:"email"`
	MapAddress            *string             `json:"map_address"`
	Owners                *[]TerritoryOwner   `json:"owners"`
	ZipCodes              *[]TerritoryZipCode `json:"zip_codes"`
}
