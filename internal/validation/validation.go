package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinPasswordLength         = 8
	MaxPasswordLength         = 72 // лимит bcrypt
	MinNameLength             = 2
	MaxNameLength             = 100
	MaxTitleLength            = 200
	MaxClientNameLength       = 200
	MaxJobDescriptionLength   = 5000
	MinJobDescriptionLength   = 10
	MaxScopeLength            = 20000
	MaxTermsLength            = 10000
	MaxNotesLength            = 5000
	MaxDeliverablesCount      = 100
	MaxMilestonesCount        = 100
	MaxWebsiteLength          = 500
	MaxPrice                  = 100000000.0 // 100 миллионов
)

// ValidateLength проверяет длину строки в рунах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters", fieldName, max)
	}
	return nil
}

// ValidateRequired проверяет, что поле не пустое после обрезки пробелов.
func ValidateRequired(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("invalid email format")
	}

	localPart, domainPart := parts[0], parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("invalid email format")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 || !strings.Contains(domainPart, ".") {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidatePassword проверяет требования к паролю.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	}
	return nil
}

// ValidateWebsite проверяет, что ссылка — валидный http(s) URL.
func ValidateWebsite(website string) error {
	if website == "" {
		return nil
	}
	if len(website) > MaxWebsiteLength {
		return fmt.Errorf("website must be at most %d characters", MaxWebsiteLength)
	}

	parsed, err := url.Parse(website)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("website must be a valid http(s) URL")
	}
	return nil
}

// ValidatePrice проверяет, что цена неотрицательна и в разумных пределах.
func ValidatePrice(fieldName string, price float64) error {
	if price < 0 {
		return fmt.Errorf("%s must not be negative", fieldName)
	}
	if price > MaxPrice {
		return fmt.Errorf("%s is too large", fieldName)
	}
	return nil
}
