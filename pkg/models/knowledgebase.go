package models

import "time"

// KnowledgeBaseFile is stored object metadata plus its role-assignment set.
// A file with zero assigned roles is visible to every role.
type KnowledgeBaseFile struct {
	ID              int        `json:"id"`
	FileName        string     `json:"file_name"`
	OriginalName    string     `json:"original_name"`
	FilePath        string     `json:"file_path"`
	FileSize        int64      `json:"file_size"`
	FileType        *string    `json:"file_type"`
	MimeType        *string    `json:"mime_type"`
	Description     *string    `json:"description"`
	UploadedByID    int        `json:"uploaded_by_id"`
	UploadedByName  *string    `json:"uploaded_by_name,omitempty"`
	UploadedByEmail *string    `json:"uploaded_by_email,omitempty"`
	IsOwner         bool       `json:"is_owner"`
	AssignedRoles   []FileRole `json:"assigned_roles"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at"`
}

// FileRole is one role assignment of a knowledge-base file.
type FileRole struct {
	Role string `json:"role"`
}

// UpdateFileRolesRequest replaces a file's role-assignment set.
type UpdateFileRolesRequest struct {
	Roles any `json:"roles"`
}
