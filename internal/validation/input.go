package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Ограничения полей мастера.
const (
	MaxNameLength        = 100
	MaxEmailLength       = 254
	MaxPhoneLength       = 30
	MaxAddressLength     = 300
	MaxDescriptionLength = 500
	MaxSearchQueryLength = 200
)

// Категории ошибок; по ним мастер выбирает ключ перевода.
var (
	ErrRequired     = errors.New("значение обязательно")
	ErrTooLong      = errors.New("значение слишком длинное")
	ErrTooShort     = errors.New("значение слишком короткое")
	ErrInvalidEmail = errors.New("некорректный формат email")
	ErrInvalidPhone = errors.New("некорректный номер телефона")
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._%+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	phoneRegex       = regexp.MustCompile(`^\+?[0-9 ()/.-]{6,}$`)
)

// ValidateLength проверяет длину строки в символах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов: %w", fieldName, min, ErrTooShort)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов: %w", fieldName, max, ErrTooLong)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email: %w", ErrRequired)
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email: %w", ErrTooLong)
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ErrInvalidEmail
	}

	localPart, domainPart := parts[0], parts[1]
	if len(localPart) == 0 || len(localPart) > 64 {
		return ErrInvalidEmail
	}
	if strings.HasPrefix(localPart, ".") || strings.HasSuffix(localPart, ".") || strings.Contains(localPart, "..") {
		return ErrInvalidEmail
	}
	if !emailLocalRegex.MatchString(localPart) || !emailDomainRegex.MatchString(domainPart) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePhone проверяет необязательный номер телефона; пустая строка допустима.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	if utf8.RuneCountInString(phone) > MaxPhoneLength {
		return fmt.Errorf("телефон: %w", ErrTooLong)
	}
	if !phoneRegex.MatchString(phone) {
		return ErrInvalidPhone
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым: %w", fieldName, ErrRequired)
	}
	return nil
}

// ValidateName проверяет имя или фамилию заявителя.
func ValidateName(fieldName, value string) error {
	if err := ValidateNonEmpty(fieldName, value); err != nil {
		return err
	}
	return ValidateLength(fieldName, strings.TrimSpace(value), 0, MaxNameLength)
}

// TruncateRunes обрезает строку до max символов, не разрывая UTF-8 последовательности.
func TruncateRunes(value string, max int) string {
	if max <= 0 || utf8.RuneCountInString(value) <= max {
		return value
	}
	runes := []rune(value)
	return string(runes[:max])
}
