// user.go — доменная модель учётной записи.
package model

import (
	"time"

	"github.com/sakthiauto/inspection-module/internal/domain/workflow"
)

// User — учётная запись пользователя. Роль фиксируется при регистрации
// по секретному коду роли и далее не меняется.
type User struct {
	// ID — внутренний идентификатор (uuid).
	ID string `json:"id"`
	// Email — адрес, используется как логин. Уникален.
	Email string `json:"email"`
	// PasswordHash — bcrypt-хэш пароля. В JSON не сериализуется.
	PasswordHash string `json:"-"`
	// Role — роль пользователя в цепочке согласования.
	Role workflow.Role `json:"role"`
	// CreatedAt — время регистрации.
	CreatedAt time.Time `json:"createdAt"`
}
