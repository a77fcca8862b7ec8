package handler

import (
	"errors"
	"net/http"

	"fleet-auth-server/internal/model"
	"fleet-auth-server/internal/model/requestresponse"
	"fleet-auth-server/internal/ports"
	"fleet-auth-server/internal/security"
	"fleet-auth-server/internal/util"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationService) *AuthenticationHandler {
	return &AuthenticationHandler{authenticationService}
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Выдаёт access (24h) и refresh (30d) токены по email и паролю
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} requestresponse.LoginResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 429 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tokens, err := h.AuthenticationService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			sendErrorResponse(w, http.StatusUnauthorized, "неверный логин или пароль")
			return
		}
		util.Logger.Error().Err(err).Msg("[AuthHandler] ошибка входа")
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	sendJSON(w, http.StatusOK, tokensResponse(tokens))
}

// RefreshToken godoc
// @Summary Обновление токенов
// @Description Меняет refresh токен на новую пару, старый refresh отзывается
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Success 200 {object} requestresponse.LoginResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /api/auth/refresh [post]
func (h *AuthenticationHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RefreshTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	tokens, err := h.AuthenticationService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, model.ErrInvalidToken) {
			sendErrorResponse(w, http.StatusUnauthorized, "invalid or expired")
			return
		}
		util.Logger.Error().Err(err).Msg("[AuthHandler] ошибка обновления токенов")
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	sendJSON(w, http.StatusOK, tokensResponse(tokens))
}

// Logout godoc
// @Summary Завершение сессии
// @Description Отзывает access токен из заголовка и, если передан, refresh токен
// @Tags Authentication
// @Accept json
// @Produce json
// @Param body body requestresponse.LogoutRequest false "Тело запроса"
// @Success 200 {object} requestresponse.LogoutResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/auth/logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	accessToken := security.BearerToken(r)
	if accessToken == "" {
		sendErrorResponse(w, http.StatusUnauthorized, "no token")
		return
	}

	var req requestresponse.LogoutRequest
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}

	if err := h.AuthenticationService.Logout(r.Context(), accessToken, req.RefreshToken); err != nil {
		util.Logger.Error().Err(err).Msg("[AuthHandler] ошибка выхода")
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	resp := requestresponse.LogoutResponse{}
	resp.Response.LoggedOut = true
	sendJSON(w, http.StatusOK, resp)
}

// GetCurrentUser godoc
// @Summary Текущий пользователь
// @Description Возвращает идентичность, которую middleware положил в контекст
// @Tags Authentication
// @Produce json
// @Success 200 {object} requestresponse.CurrentUserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /api/auth/me [get]
func (h *AuthenticationHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	identity, err := security.IdentityFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}

	resp := requestresponse.CurrentUserResponse{}
	resp.Response.ID = identity.ID
	resp.Response.CompanyID = identity.CompanyID
	resp.Response.CityID = identity.CityID
	resp.Response.IsAdmin = identity.IsAdmin
	resp.Response.Role = identity.Role
	resp.Response.UserType = string(identity.UserType)
	resp.Response.AuthMethod = string(identity.AuthMethod)
	resp.Response.Scopes = identity.Permissions

	sendJSON(w, http.StatusOK, resp)
}

func tokensResponse(tokens *model.TokensPair) requestresponse.LoginResponse {
	resp := requestresponse.LoginResponse{}
	resp.Response.AccessToken = tokens.AccessToken
	resp.Response.RefreshToken = tokens.RefreshToken
	return resp
}
