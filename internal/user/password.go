package user

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/MikeMC777/tienda-ecom/internal/validation"
)

const (
	bcryptCost        = bcrypt.DefaultCost
	minPasswordLength = 8
	passwordSymbols   = `!@#$%^&*(),.?":{}|<>`
)

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword applies the password policy to password and its
// confirmation, recording every violation under the given field names.
func ValidatePassword(v validation.Errors, field, password, confirmField, confirm string) {
	if len(password) < minPasswordLength {
		v.Add(field, "password must be at least 8 characters long")
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		v.Add(field, "password must contain at least one digit")
	}
	if !strings.ContainsAny(password, passwordSymbols) {
		v.Add(field, "password must contain at least one symbol")
	}
	if password != confirm {
		v.Add(confirmField, "password fields didn't match")
	}
}
