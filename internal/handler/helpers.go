package handler

import (
	"encoding/json"
	"net/http"

	"fleet-auth-server/internal/util"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func sendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	util.HandleError(w, message, statusCode)
}

func sendJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		util.Logger.Error().Err(err).Msg("ошибка кодирования ответа")
	}
}

// decodeBody : JSON + проверка тегов validate, false если ответ с ошибкой уже отправлен
func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "некорректный JSON")
		return false
	}
	if err := validate.Struct(dest); err != nil {
		sendErrorResponse(w, http.StatusBadRequest, "некорректные поля запроса")
		return false
	}
	return true
}
