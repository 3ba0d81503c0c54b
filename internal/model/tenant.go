package model

const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

// Client is an organizational tenant. Clients are never hard-deleted; the
// status toggle preserves audit history.
type Client struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Domain    string `json:"domain"`
	Status    string `json:"status"`
	CreatedBy string `json:"created_by"`
	Ctime     int64  `json:"ctime"`
	Mtime     int64  `json:"mtime"`
}

// Project belongs to exactly one client; client_id never changes after
// creation.
type Project struct {
	ID        string `json:"id"`
	ClientID  string `json:"client_id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Status    string `json:"status"`
	CreatedBy string `json:"created_by"`
	Ctime     int64  `json:"ctime"`
	Mtime     int64  `json:"mtime"`
}
