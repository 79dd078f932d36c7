// Package validator registers the auth specific validation rules.
package validator

import (
	"unicode"

	"crm_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

// StrongPasswordTag is the struct tag for the password policy.
const StrongPasswordTag = "strongpassword"

// PasswordPolicy describes the password requirements for API error messages
const PasswordPolicy = "Password must be at least 8 characters and include: uppercase letter, lowercase letter, number, and special character"

// Register adds the auth rules to v.
func Register(v *validator.Validator) error {
	return v.RegisterValidation(StrongPasswordTag, func(fl playground.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
}

// IsStrongPassword checks length and character class mix.
func IsStrongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	return hasUpper && hasLower && hasDigit && hasSpecial
}
