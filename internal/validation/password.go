package validation

import (
	"fmt"
	"unicode"
)

// bcrypt учитывает только первые 72 байта.
const (
	MinPasswordLength = 10
	MaxPasswordBytes  = 72
)

// ValidatePassword проверяет пароль администратора.
func ValidatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return fmt.Errorf("пароль должен быть не менее %d символов: %w", MinPasswordLength, ErrTooShort)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("пароль длиннее %d байт: %w", MaxPasswordBytes, ErrTooLong)
	}

	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasUpper || !hasLower || !hasNumber {
		return fmt.Errorf("пароль должен содержать заглавные и строчные буквы и цифры")
	}
	return nil
}
