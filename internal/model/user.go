package model

const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

type User struct {
	ID           string   `json:"id"`
	Email        string   `json:"email"`
	Name         string   `json:"name"`
	Role         Role     `json:"role"`
	Status       string   `json:"status"`
	PasswordHash string   `json:"-"`
	ClientIDs    []string `json:"client_ids"`
	ProjectIDs   []string `json:"project_ids"`
	Ctime        int64    `json:"ctime"`
	Mtime        int64    `json:"mtime"`
}
