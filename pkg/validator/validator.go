package validator

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type ValidationErrors map[string]string

func (v ValidationErrors) HasErrors() bool {
	return len(v) > 0
}

func (v ValidationErrors) Add(field, message string) {
	v[field] = message
}

// Gabonese numbers: +241 followed by 7-8 digits, spaces/dashes tolerated.
var phoneRegex = regexp.MustCompile(`^\+?241[\s-]?\d([\s-]?\d){6,7}$`)

func ValidateRegister(email, displayName string, phone *string, password string) ValidationErrors {
	errs := make(ValidationErrors)

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		errs.Add("display_name", "Display name is required")
	} else if utf8.RuneCountInString(displayName) < 2 {
		errs.Add("display_name", "Display name must be at least 2 characters")
	} else if utf8.RuneCountInString(displayName) > 100 {
		errs.Add("display_name", "Display name is too long")
	}

	if phone != nil && *phone != "" && !phoneRegex.MatchString(strings.TrimSpace(*phone)) {
		errs.Add("phone", "Phone must be a valid Gabonese number (+241 ...)")
	}

	validatePassword(password, errs)

	return errs
}

func ValidateLogin(email, password string) ValidationErrors {
	errs := make(ValidationErrors)

	email = strings.TrimSpace(email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs.Add("email", "Invalid email address")
	}

	if password == "" {
		errs.Add("password", "Password is required")
	}

	return errs
}

func ValidateBusiness(name, category, city string) ValidationErrors {
	errs := make(ValidationErrors)

	name = strings.TrimSpace(name)
	if name == "" {
		errs.Add("name", "Business name is required")
	} else if utf8.RuneCountInString(name) < 2 {
		errs.Add("name", "Business name must be at least 2 characters")
	} else if utf8.RuneCountInString(name) > 100 {
		errs.Add("name", "Business name is too long")
	}

	if strings.TrimSpace(category) == "" {
		errs.Add("category", "Category is required")
	}

	if strings.TrimSpace(city) == "" {
		errs.Add("city", "City is required")
	}

	return errs
}

func ValidateMessage(content, msgType string) ValidationErrors {
	errs := make(ValidationErrors)

	if utf8.RuneCountInString(content) > 4000 {
		errs.Add("content", "Message is too long")
	}

	switch msgType {
	case "", "text", "image", "audio", "video", "document", "location":
	default:
		errs.Add("type", "Unknown message type")
	}

	if (msgType == "" || msgType == "text") && strings.TrimSpace(content) == "" {
		errs.Add("content", "Message content is required")
	}

	return errs
}

func validatePassword(password string, errs ValidationErrors) {
	if len(password) < 8 {
		errs.Add("password", "Password must be at least 8 characters")
		return
	}

	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	missing := []string{}
	if !hasUpper {
		missing = append(missing, "one uppercase letter")
	}
	if !hasLower {
		missing = append(missing, "one lowercase letter")
	}
	if !hasDigit {
		missing = append(missing, "one number")
	}

	if len(missing) > 0 {
		errs.Add("password", fmt.Sprintf("Password must contain at least %s", strings.Join(missing, ", ")))
	}
}
