package handler

import (
	"errors"
	"net/http"

	"fleet-auth-server/internal/model"
	"fleet-auth-server/internal/model/requestresponse"
	"fleet-auth-server/internal/ports"
	"fleet-auth-server/internal/security"
	"fleet-auth-server/internal/util"

	"github.com/go-chi/chi/v5"
)

type APIKeyHandler struct {
	ports.APIKeyService
}

func NewAPIKeyHandler(apiKeyService ports.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{apiKeyService}
}

// CreateAPIKey godoc
// @Summary Выпуск API ключа
// @Description Создаёт ключ для компании. Сырой ключ возвращается только в этом ответе
// @Tags APIKeys
// @Accept json
// @Produce json
// @Param body body requestresponse.CreateAPIKeyRequest true "Тело запроса"
// @Success 201 {object} requestresponse.CreateAPIKeyResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/apikeys [post]
func (h *APIKeyHandler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.CreateAPIKeyRequest
	if !decodeBody(w, r, &req) {
		return
	}

	key, rawKey, err := h.APIKeyService.Create(r.Context(), req.Name, req.CompanyID, req.Permissions, req.ExpiresAt)
	if err != nil {
		if errors.Is(err, model.ErrInvalidInput) {
			sendErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		util.Logger.Error().Err(err).Msg("[APIKeyHandler] ошибка выпуска ключа")
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	resp := requestresponse.CreateAPIKeyResponse{}
	resp.Response.ID = key.ID
	resp.Response.Key = rawKey
	resp.Response.ExpiresAt = key.ExpiresAt
	sendJSON(w, http.StatusCreated, resp)
}

// RevokeAPIKey godoc
// @Summary Отзыв API ключа
// @Description Деактивирует ключ в БД и удаляет его из кэша. Не администратор может отозвать только ключи своей компании
// @Tags APIKeys
// @Produce json
// @Param id path string true "ID ключа"
// @Success 200 {object} requestresponse.RevokeAPIKeyResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse
// @Failure 500 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /api/apikeys/{id} [delete]
func (h *APIKeyHandler) RevokeAPIKey(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		sendErrorResponse(w, http.StatusBadRequest, "id не указан")
		return
	}

	identity, err := security.IdentityFromContext(r.Context())
	if err != nil {
		sendErrorResponse(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	// администратор отзывает любой ключ, остальные только ключи своей компании
	var companyID *int64
	if !identity.Admin() {
		if identity.CompanyID == nil {
			sendErrorResponse(w, http.StatusForbidden, "forbidden")
			return
		}
		companyID = identity.CompanyID
	}

	if err := h.APIKeyService.Revoke(r.Context(), id, companyID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			sendErrorResponse(w, http.StatusNotFound, "ключ не найден")
			return
		}
		util.Logger.Error().Err(err).Str("key_id", id).Msg("[APIKeyHandler] ошибка отзыва ключа")
		sendErrorResponse(w, http.StatusInternalServerError, "внутренняя ошибка сервера")
		return
	}

	resp := requestresponse.RevokeAPIKeyResponse{}
	resp.Response.Revoked = true
	sendJSON(w, http.StatusOK, resp)
}
