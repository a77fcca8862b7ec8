package security

import (
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash : сравнение с ним выравнивает время ответа для несуществующих пользователей
var dummyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("fleet-auth-dummy-password"), bcrypt.DefaultCost)
	return hash
})

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnPasswordCheck : тратит столько же времени, сколько настоящая проверка
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
}
