// Пакет rbac — роли сотрудников и их соответствие roleId из API.
// API выдаёт в токене числовой roleId, маршруты описываются именами ролей.
package rbac

import (
	"fmt"
	"strings"
)

// Role — имя роли сотрудника.
type Role string

// Роли системы.
const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// roleIDs — словарь ролей: имя → roleId в API.
var roleIDs = map[Role]uint{
	RoleAdmin: 1,
	RoleUser:  2,
}

// ID возвращает roleId роли в API (0 для неизвестной роли).
func (r Role) ID() uint {
	return roleIDs[r]
}

// String реализует fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// RoleFromID возвращает роль по roleId из API.
// Второе значение false, если roleId не известен.
func RoleFromID(id uint) (Role, bool) {
	for role, roleID := range roleIDs {
		if roleID == id {
			return role, true
		}
	}
	return "", false
}

// ParseRole разбирает имя роли без учёта регистра.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !IsValidRole(role) {
		return "", fmt.Errorf("неизвестная роль %q, допустимые: ADMIN, USER", s)
	}
	return role, nil
}

// IsValidRole проверяет, является ли роль допустимой.
func IsValidRole(role Role) bool {
	_, ok := roleIDs[role]
	return ok
}
