package util

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger : общий логгер процесса
var Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// InitLogger : настраивает уровень и формат (json или console)
func InitLogger(level, format string) {
	var out io.Writer = os.Stdout
	if strings.EqualFold(format, "console") {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	Logger = zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

func LogError(message string, err error) error {
	Logger.Error().Err(err).Msg(message)
	return fmt.Errorf("%s: %w", message, err)
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    int    `json:"code"`
	}{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		Logger.Error().Err(err).Msg("ошибка записи ответа")
	}
}

// KeyFingerprint : короткий отпечаток секрета для логов, сам секрет не логируется
func KeyFingerprint(digest string) string {
	if len(digest) > 8 {
		return digest[:8]
	}
	return digest
}
