package requestresponse

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"dispatcher@fleet.io"`
	Password string `json:"password" validate:"required,min=8" example:"P@ssw0rd123"`
}

// LoginResponse : ответ на успешную аутентификацию
type LoginResponse struct {
	Response struct {
		AccessToken  string `json:"access_token" example:"v4.local.AAAA..."`
		RefreshToken string `json:"refresh_token" example:"v4.local.BBBB..."`
	} `json:"response"`
}

// RefreshTokenRequest : запрос на обновление пары токенов
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"v4.local.BBBB..."`
}

// LogoutRequest : refresh токен опционален, access берётся из заголовка
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty" example:"v4.local.BBBB..."`
}

// LogoutResponse : ответ на завершение сессии
type LogoutResponse struct {
	Response struct {
		LoggedOut bool `json:"logged_out" example:"true"`
	} `json:"response"`
}

// CurrentUserResponse : информация о текущем пользователе
type CurrentUserResponse struct {
	Response struct {
		ID         string   `json:"id" example:"u1"`
		CompanyID  *int64   `json:"companyId,omitempty" example:"42"`
		CityID     *int64   `json:"cityId,omitempty"`
		IsAdmin    *bool    `json:"isAdmin,omitempty" example:"false"`
		Role       string   `json:"role,omitempty"`
		UserType   string   `json:"userType" example:"company"`
		AuthMethod string   `json:"authMethod" example:"bearer"`
		Scopes     []string `json:"permissions,omitempty"`
	} `json:"response"`
}

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error   string `json:"error" example:"Unauthorized"`
	Message string `json:"message" example:"invalid or expired"`
	Code    int    `json:"code" example:"401"`
}
