package services

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/ebet/internal/common"
)

const (
	minPasswordLen = 4
	maxPasswordLen = 20
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field. It matches common.ErrValidation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return fmt.Sprintf("%v: %s", common.ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return common.ErrValidation }

// SignUpInput is the data a new account is created from.
type SignUpInput struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// normalize trims the nickname and lower-cases the email, then checks every
// field. The password is left untouched.
func (in SignUpInput) normalize() (SignUpInput, error) {
	profile, fields := ProfileInput{Nickname: in.Nickname, Email: in.Email}.check()
	out := SignUpInput{Nickname: profile.Nickname, Email: profile.Email, Password: in.Password}

	if n := utf8.RuneCountInString(out.Password); n < minPasswordLen || n > maxPasswordLen {
		fields = append(fields, FieldError{"password", fmt.Sprintf("must be %d to %d characters", minPasswordLen, maxPasswordLen)})
	}

	if len(fields) > 0 {
		return out, &ValidationError{Fields: fields}
	}
	return out, nil
}

// ProfileInput is the editable part of an account.
type ProfileInput struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

func (in ProfileInput) normalize() (ProfileInput, error) {
	out, fields := in.check()
	if len(fields) > 0 {
		return out, &ValidationError{Fields: fields}
	}
	return out, nil
}

func (in ProfileInput) check() (ProfileInput, []FieldError) {
	out := ProfileInput{
		Nickname: strings.TrimSpace(in.Nickname),
		Email:    strings.ToLower(strings.TrimSpace(in.Email)),
	}

	var fields []FieldError
	switch {
	case out.Nickname == "":
		fields = append(fields, FieldError{"nickname", "must not be empty"})
	case strings.Contains(out.Nickname, "@"):
		fields = append(fields, FieldError{"nickname", "must not contain @"})
	}

	if addr, err := mail.ParseAddress(out.Email); err != nil || addr.Address != out.Email {
		fields = append(fields, FieldError{"email", "must be a valid email address"})
	}

	return out, fields
}

// checkSignIn rejects missing credentials before any lookup runs. Length
// rules are not applied so accounts created under older rules can still
// sign in.
func checkSignIn(identifier, password string) (string, error) {
	identifier = normalizeIdentifier(identifier)

	var fields []FieldError
	if identifier == "" {
		fields = append(fields, FieldError{"nickname", "must not be empty"})
	}
	if password == "" {
		fields = append(fields, FieldError{"password", "must not be empty"})
	}

	if len(fields) > 0 {
		return identifier, &ValidationError{Fields: fields}
	}
	return identifier, nil
}

// normalizeIdentifier prepares a signin identifier for lookup. Emails are
// stored lower-cased.
func normalizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if strings.Contains(identifier, "@") {
		return strings.ToLower(identifier)
	}
	return identifier
}
