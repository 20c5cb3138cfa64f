package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// EmailPattern отсекает адреса без домена и display-name формы ("Bob <bob@x.io>")
var EmailPattern = regexp.MustCompile(`^[^\s@<>]+@[^\s@<>]+\.[^\s@<>]+$`)

const (
	// MaxEmailLen максимальная длина email
	MaxEmailLen = 254
	// MinPasswordLen минимальная длина пароля
	MinPasswordLen = 8
	// MaxPasswordLen - bcrypt учитывает только первые 72 байта
	MaxPasswordLen = 72
	// MaxAppNameLen максимальная длина имени приложения
	MaxAppNameLen = 100
	// MaxDescriptionLen максимальная длина описания приложения
	MaxDescriptionLen = 500
	// MaxSecretNameLen максимальная длина имени секрета
	MaxSecretNameLen = 100
)

// ValidateEmail проверяет login identifier пользователя
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}

	if len(email) > MaxEmailLen {
		return fmt.Errorf("email must not exceed %d characters", MaxEmailLen)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !EmailPattern.MatchString(email) {
		return fmt.Errorf("invalid email address")
	}

	return nil
}

// ValidatePassword проверяет требования к паролю при регистрации
func ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinPasswordLen {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLen)
	}

	if len(password) > MaxPasswordLen {
		return fmt.Errorf("password must not exceed %d bytes", MaxPasswordLen)
	}

	return nil
}

// ValidateAppName проверяет имя приложения
func ValidateAppName(name string) error {
	if name == "" {
		return fmt.Errorf("name is required")
	}

	if utf8.RuneCountInString(name) > MaxAppNameLen {
		return fmt.Errorf("name must be less than %d characters", MaxAppNameLen)
	}

	return nil
}

// ValidateDescription проверяет опциональное описание приложения
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLen {
		return fmt.Errorf("description must be less than %d characters", MaxDescriptionLen)
	}

	return nil
}

// ValidateSecretName проверяет имя секрета.
// Имена case-sensitive и используются как сегмент URL, поэтому control-символы и "/" запрещены.
func ValidateSecretName(name string) error {
	if name == "" {
		return fmt.Errorf("secret name is required")
	}

	if utf8.RuneCountInString(name) > MaxSecretNameLen {
		return fmt.Errorf("secret name must be less than %d characters", MaxSecretNameLen)
	}

	for _, r := range name {
		if r == '/' || unicode.IsControl(r) {
			return fmt.Errorf("secret name cannot contain '/' or control characters")
		}
	}

	return nil
}

// ValidateSecretValue проверяет значение секрета
func ValidateSecretValue(value string) error {
	if value == "" {
		return fmt.Errorf("secret value is required")
	}

	return nil
}
