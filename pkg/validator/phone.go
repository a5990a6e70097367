package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrInvalidLength indicates phone number length is wrong for a Philippine mobile number
	ErrInvalidLength = errors.New("phone number must be 11 digits (09XXXXXXXXX)")

	// ErrInvalidPrefix indicates phone number doesn't start with a Philippine mobile prefix
	ErrInvalidPrefix = errors.New("phone number must start with 09")
)

// phoneRegex matches digits only
var phoneRegex = regexp.MustCompile(`^\d+$`)

// PhoneValidator validates Philippine mobile numbers
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate validates a Philippine mobile number.
// Accepts 09171234567, 0917 123 4567, +639171234567 and similar variants.
// Returns the sanitized local form (09XXXXXXXXX).
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if phone == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)

	if !phoneRegex.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}

	if len(sanitized) != 11 {
		return "", ErrInvalidLength
	}

	if !strings.HasPrefix(sanitized, "09") {
		return "", ErrInvalidPrefix
	}

	return sanitized, nil
}

// Sanitize removes separators and converts the +63 country code form back to
// the local 09 form.
func (v *PhoneValidator) Sanitize(phone string) string {
	phone = strings.ReplaceAll(phone, " ", "")
	phone = strings.ReplaceAll(phone, "-", "")
	phone = strings.ReplaceAll(phone, "(", "")
	phone = strings.ReplaceAll(phone, ")", "")
	phone = strings.ReplaceAll(phone, "+", "")
	phone = strings.ReplaceAll(phone, ".", "")

	// 639171234567 -> 09171234567
	if strings.HasPrefix(phone, "63") && len(phone) == 12 {
		phone = "0" + phone[2:]
	}

	return phone
}

// ToE164 validates a phone number and returns it in E.164 form
// (+639XXXXXXXXX), the format the auth layer stores.
func (v *PhoneValidator) ToE164(phone string) (string, error) {
	sanitized, err := v.Validate(phone)
	if err != nil {
		return "", err
	}
	return "+63" + sanitized[1:], nil
}

// Format formats a phone number in the standard display form: 09XX XXX XXXX
func (v *PhoneValidator) Format(phone string) (string, error) {
	sanitized, err := v.Validate(phone)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s %s %s",
		sanitized[0:4],
		sanitized[4:7],
		sanitized[7:11],
	), nil
}

// IsValid is a convenience method that returns true if phone is valid
func (v *PhoneValidator) IsValid(phone string) bool {
	_, err := v.Validate(phone)
	return err == nil
}
