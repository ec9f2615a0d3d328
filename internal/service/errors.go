// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrConflict — конфликт (дублирующийся ресурс).
	ErrConflict = errors.New("конфликт — ресурс уже существует")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrInvalidRoleCode — код роли не совпадает с настроенным.
	ErrInvalidRoleCode = errors.New("неверный код роли")
	// ErrInvalidCredentials — неверная пара email/пароль.
	ErrInvalidCredentials = errors.New("неверные учётные данные")
	// ErrLastQualityHead — попытка удалить последнего Quality Head.
	ErrLastQualityHead = errors.New("нельзя удалить последнего Quality Head")
)
