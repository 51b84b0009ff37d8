package models

import (
	"regexp"
	"strings"
)

// Field length limits enforced by the backend; checked client-side so a form
// never submits a request that is guaranteed to fail.
const (
	MaxTitleLen       = 255
	MaxDescriptionLen = 1000
	MinPasswordLen    = 8
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidateLogin returns field-keyed messages for a login form. An empty map
// means the form may be submitted.
func ValidateLogin(email, password string) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(email) == "" {
		errs["email"] = "Email is required"
	} else if !emailRe.MatchString(email) {
		errs["email"] = "Invalid email"
	}
	if password == "" {
		errs["password"] = "Password is required"
	}
	return errs
}

// ValidateRegistration checks a registration form.
func ValidateRegistration(req RegisterRequest) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "Name is required"
	}
	if strings.TrimSpace(req.Username) == "" {
		errs["username"] = "Username is required"
	}
	if strings.TrimSpace(req.Email) == "" {
		errs["email"] = "Email is required"
	} else if !emailRe.MatchString(req.Email) {
		errs["email"] = "Invalid email"
	}
	if req.Password == "" {
		errs["password"] = "Password is required"
	} else if len(req.Password) < MinPasswordLen {
		errs["password"] = "Password must be at least 8 characters"
	}
	if req.PasswordConfirmation == "" {
		errs["password_confirmation"] = "Password confirmation is required"
	} else if req.PasswordConfirmation != req.Password {
		errs["password_confirmation"] = "Passwords must match"
	}
	return errs
}

// ValidateProfile checks a profile update form.
func ValidateProfile(req ProfileRequest) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		errs["name"] = "Name is required"
	} else if len(req.Name) > MaxTitleLen {
		errs["name"] = "Name too long"
	}
	if strings.TrimSpace(req.Username) == "" {
		errs["username"] = "Username is required"
	} else if len(req.Username) > MaxTitleLen {
		errs["username"] = "Username too long"
	}
	if strings.TrimSpace(req.Email) == "" {
		errs["email"] = "Email is required"
	} else if !emailRe.MatchString(req.Email) {
		errs["email"] = "Invalid email"
	}
	return errs
}

// ValidateListForm checks a task-list create/edit form.
func ValidateListForm(title, description string) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(title) == "" {
		errs["title"] = "Title is required"
	} else if len(title) > MaxTitleLen {
		errs["title"] = "Title too long"
	}
	if len(description) > MaxDescriptionLen {
		errs["description"] = "Description too long"
	}
	return errs
}

// ValidateTaskForm checks a task create/edit form. Same limits as lists.
func ValidateTaskForm(title, description string) map[string]string {
	return ValidateListForm(title, description)
}
