// Package models содержит доменные модели сервиса: профиль пользователя с данными
// пробного периода, правила регулярных расходов, записи аудита и агрегаты дашборда.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного владельца барбершопа.
type User struct {
	UUID             string       // Уникальный идентификатор пользователя
	Email            string       // Электронная почта
	Username         string       // Имя пользователя (уникальное)
	PasswordHash     string       // Хэш пароля пользователя
	Role             string       // Роль пользователя, admin или user
	StripeCustomerID *string      // Идентификатор клиента в Stripe
	CreatedAt        time.Time    // Дата регистрации
	Trial            TrialProfile // Данные пробного периода
	HasPaymentMethod bool         // Привязан ли способ оплаты
	LastPromptMode   string       // Последний отправленный уровень напоминания о триале
}

// DummyUser используется для приёма данных регистрации из JSON-запроса.
type DummyUser struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// Credentials данные для входа.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ProfileCacheKey ключ кэша профиля пробного периода пользователя.
func ProfileCacheKey(userUID string) string {
	return "profile:" + userUID
}
