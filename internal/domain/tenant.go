package domain

import "time"

// Tenant status values
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
	TenantStatusDeleted  = "deleted"
)

// DefaultTenantID is returned by the resolver when no signal matches
const DefaultTenantID = "default"

// Tenant is an isolated content space
type Tenant struct {
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	CustomDomain *string   `gorm:"column:custom_domain;size:255;index" json:"custom_domain"`
	ID           string    `gorm:"column:id;primaryKey;size:64" json:"id"`
	Subdomain    string    `gorm:"column:subdomain;size:63;uniqueIndex" json:"subdomain"`
	RootPageID   string    `gorm:"column:root_page_id;size:64" json:"root_page_id"`
	Status       string    `gorm:"column:status;size:20;default:active;index" json:"status"`
	Title        string    `gorm:"column:title;size:255" json:"title"`
	Description  string    `gorm:"column:description;type:text" json:"description"`
	Author       string    `gorm:"column:author;size:100" json:"author"`
	Theme        string    `gorm:"column:theme;size:50;default:heo" json:"theme"`
	AvatarURL    string    `gorm:"column:avatar_url;size:500" json:"avatar_url"`
	Config       string    `gorm:"column:config;type:text" json:"-"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// IsActive reports whether the tenant may be used for mutating operations
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// TenantStats summarizes a tenant's live content
type TenantStats struct {
	TotalBlocks int64 `json:"total_blocks"`
	TotalPages  int64 `json:"total_pages"`
}

// TenantResponse is the admin API representation of a tenant
type TenantResponse struct {
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	CustomDomain *string        `json:"custom_domain"`
	Config       map[string]any `json:"config"`
	Stats        *TenantStats   `json:"stats,omitempty"`
	ID           string         `json:"id"`
	Subdomain    string         `json:"subdomain"`
	RootPageID   string         `json:"root_page_id"`
	Status       string         `json:"status"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Author       string         `json:"author"`
	Theme        string         `json:"theme"`
	AvatarURL    string         `json:"avatar_url"`
}

// CreateTenantRequest is the body of POST /api/tenants
type CreateTenantRequest struct {
	CustomDomain *string        `json:"custom_domain" validate:"omitempty,max=253"`
	Config       map[string]any `json:"config"`
	Subdomain    string         `json:"subdomain" binding:"required" validate:"max=63"`
	Title        string         `json:"title" binding:"required" validate:"max=200"`
	Description  string         `json:"description" validate:"max=1000"`
	Author       string         `json:"author" validate:"max=100"`
	Theme        string         `json:"theme" validate:"max=50"`
}

// UpdateTenantRequest is the body of PUT /api/tenants/:tenantId.
// Nil fields are left untouched.
type UpdateTenantRequest struct {
	Title        *string        `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string        `json:"description" validate:"omitempty,max=1000"`
	Author       *string        `json:"author" validate:"omitempty,max=100"`
	Theme        *string        `json:"theme" validate:"omitempty,max=50"`
	CustomDomain *string        `json:"custom_domain" validate:"omitempty,max=253"`
	AvatarURL    *string        `json:"avatar_url" validate:"omitempty,max=2048"`
	Status       *string        `json:"status"`
	Config       map[string]any `json:"config"`
}

// CreateTenantResult is returned after provisioning a tenant
type CreateTenantResult struct {
	ID         string `json:"id"`
	Subdomain  string `json:"subdomain"`
	RootPageID string `json:"root_page_id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
}
