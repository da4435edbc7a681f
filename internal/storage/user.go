package storage

const RoleAdmin = "admin"

type User struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	Role       string `json:"role"`
	Department string `json:"department"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
