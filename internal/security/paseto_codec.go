package security

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fleet-auth-server/config"
	"fleet-auth-server/internal/model"
	"fleet-auth-server/internal/util"

	"aidanwoods.dev/go-paseto"
)

var errMissingExpiration = errors.New("у claims нет срока действия")

// PasetoCodec : v4.local (XChaCha20 + BLAKE2b), свежий nonce на каждый вызов.
// Ключ передаётся при создании и дальше только читается.
type PasetoCodec struct {
	key    paseto.V4SymmetricKey
	parser paseto.Parser
	now    func() time.Time
}

func NewPasetoCodec(secret *config.SecretKey) (*PasetoCodec, error) {
	key, err := paseto.V4SymmetricKeyFromBytes(secret.Bytes())
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации ключа PASETO: %w", err)
	}

	return &PasetoCodec{
		key:    key,
		parser: paseto.NewParser(),
		now:    time.Now,
	}, nil
}

// Encrypt : упаковывает claims и RFC3339 exp в токен
func (c *PasetoCodec) Encrypt(claims model.Claims) (string, error) {
	if claims.ExpiresAt.IsZero() {
		return "", errMissingExpiration
	}

	token := paseto.NewToken()
	token.SetIssuedAt(c.now())
	token.SetExpiration(claims.ExpiresAt)
	token.SetString("id", claims.UserID)
	token.SetString("tokenType", string(claims.TokenType))

	if claims.Role != "" {
		token.SetString("role", claims.Role)
	}
	if claims.UserType != "" {
		token.SetString("userType", string(claims.UserType))
	}
	if claims.CompanyID != nil {
		if err := token.Set("companyId", *claims.CompanyID); err != nil {
			return "", fmt.Errorf("ошибка записи companyId: %w", err)
		}
	}
	if claims.CityID != nil {
		if err := token.Set("cityId", *claims.CityID); err != nil {
			return "", fmt.Errorf("ошибка записи cityId: %w", err)
		}
	}
	if claims.IsAdmin != nil {
		if err := token.Set("isAdmin", *claims.IsAdmin); err != nil {
			return "", fmt.Errorf("ошибка записи isAdmin: %w", err)
		}
	}

	return token.V4Encrypt(c.key, nil), nil
}

// Decrypt : nil при битом токене, неверном теге или истёкшем сроке.
// Причина наружу не отдаётся.
func (c *PasetoCodec) Decrypt(token string) *model.Claims {
	parsed, err := c.parser.ParseV4Local(c.key, token, nil)
	if err != nil {
		util.Logger.Debug().Msg("[PasetoCodec] токен отклонён")
		return nil
	}

	var claims model.Claims
	if err := json.Unmarshal(parsed.ClaimsJSON(), &claims); err != nil {
		util.Logger.Debug().Msg("[PasetoCodec] токен отклонён")
		return nil
	}

	if claims.UserID == "" || !claims.ExpiresAt.After(c.now()) {
		util.Logger.Debug().Msg("[PasetoCodec] токен отклонён")
		return nil
	}

	return &claims
}
