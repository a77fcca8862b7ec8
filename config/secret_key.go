package config

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"fleet-auth-server/internal/util"
)

const SecretKeySize = 32

var (
	ErrSecretKeyLength   = errors.New("секретный ключ должен быть ровно 32 байта")
	ErrSecretKeyEncoding = errors.New("секретный ключ должен быть в base64 или hex")
	ErrSecretKeyMissing  = errors.New("секретный ключ не задан, а эфемерный ключ запрещён конфигурацией")
)

// SecretKey : симметричный ключ процесса. Создаётся один раз при старте,
// после этого только читается.
type SecretKey struct {
	bytes     []byte
	ephemeral bool
}

// Bytes возвращает копию ключа
func (k *SecretKey) Bytes() []byte {
	out := make([]byte, len(k.bytes))
	copy(out, k.bytes)
	return out
}

// Ephemeral : ключ сгенерирован при старте, все токены умрут при рестарте
func (k *SecretKey) Ephemeral() bool {
	return k.ephemeral
}

// LoadSecretKey : читает ключ из переменной окружения cfg.SecretEnv
func LoadSecretKey(cfg *PasetoConfig) (*SecretKey, error) {
	return ParseSecretKey(os.Getenv(cfg.SecretEnv), cfg.RequireSecret)
}

// ParseSecretKey : пустое значение -> эфемерный ключ (если не required),
// неверная длина или кодировка -> ошибка, процесс не должен стартовать
func ParseSecretKey(encoded string, required bool) (*SecretKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		if required {
			return nil, ErrSecretKeyMissing
		}
		return generateSecretKey()
	}

	raw, err := decodeSecretKey(encoded)
	if err != nil {
		return nil, err
	}
	if len(raw) != SecretKeySize {
		return nil, fmt.Errorf("%w: получено %d", ErrSecretKeyLength, len(raw))
	}

	return &SecretKey{bytes: raw}, nil
}

func decodeSecretKey(encoded string) ([]byte, error) {
	if len(encoded) == hex.EncodedLen(SecretKeySize) {
		if raw, err := hex.DecodeString(encoded); err == nil {
			return raw, nil
		}
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if raw, err := enc.DecodeString(encoded); err == nil {
			return raw, nil
		}
	}
	return nil, ErrSecretKeyEncoding
}

func generateSecretKey() (*SecretKey, error) {
	raw := make([]byte, SecretKeySize)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("ошибка генерации секретного ключа: %w", err)
	}

	// ключ выводится, чтобы оператор мог закрепить его в окружении
	util.Logger.Warn().
		Str("key", base64.StdEncoding.EncodeToString(raw)).
		Msg("PASETO_SECRET_KEY не задан: сгенерирован эфемерный ключ, все сессии будут сброшены при рестарте")

	return &SecretKey{bytes: raw, ephemeral: true}, nil
}
