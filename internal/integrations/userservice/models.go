package userservice

const (
	RoleStudent = "student"
	RoleTutor   = "tutor"
)

// User модель пользователя из UserService
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"` // student | tutor | admin
}

// IsTutor возвращает true для пользователя с ролью тьютора
func (u *User) IsTutor() bool {
	return u.Role == RoleTutor
}

// ErrorResponse модель ошибки от UserService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
