package handlers

import (
	"strings"
	"unicode/utf8"

	"reviewblog/internal/service"
)

// maxCategoryNameLen bounds category names submitted through the API.
const maxCategoryNameLen = 100

// validateSignup checks the signup form and returns the first problem
// found as a message for the form, or "".
func validateSignup(email, nickname, password string) string {
	email = strings.TrimSpace(email)
	nickname = strings.TrimSpace(nickname)
	switch {
	case email == "" || !strings.Contains(email, "@"):
		return "Please enter a valid email address."
	case utf8.RuneCountInString(email) > service.MaxEmailLen:
		return "Email is too long."
	case nickname == "":
		return "Nickname is required."
	case utf8.RuneCountInString(nickname) > service.MaxNicknameLen:
		return "Nickname is too long (max 50 characters)."
	case len(password) < service.MinPasswordLen:
		return "Password must be at least 8 characters."
	}
	return ""
}

// validateArticle checks article fields before they reach the service.
func validateArticle(title, content string) string {
	if utf8.RuneCountInString(title) > service.MaxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if utf8.RuneCountInString(content) > service.MaxContentLen {
		return "Content is too long (max 100,000 characters)."
	}
	return ""
}

// validateCategoryName checks a new category name.
func validateCategoryName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Category name is required."
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLen {
		return "Category name is too long (max 100 characters)."
	}
	return ""
}
