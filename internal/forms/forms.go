// Package forms validates submitted form input. Each Validate function checks
// one form shape and returns a *common.ValidationError listing every failed
// field, or nil.
package forms

import (
	"strings"
	"unicode/utf8"

	"pokedex/internal/common"
	"pokedex/internal/models"

	"github.com/go-playground/validator/v10"
)

const (
	MsgRequired     = "This field is required."
	MsgInvalidEmail = "Invalid email address."
	MsgPasswordLen  = "Password must be at least 8 characters long!"
	MsgPasswordLong = "Password must be at most 72 bytes long."
	MsgCommentBlank = "Comments cannot be blank!"
	MsgCommentLong  = "Comments must be 140 characters or fewer."
	MsgURL          = "Image URL must be a valid URL."

	MinPasswordLength = 8
	// MaxPasswordBytes is the most bcrypt will hash.
	MaxPasswordBytes = 72
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type SignupForm struct {
	Username string `form:"username" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"min=8,pwbytes"`
	ImageURL string `form:"image_url" validate:"omitempty,avatar"`
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// ProfileEditForm carries the current password for re-verification; it is
// never written back.
type ProfileEditForm struct {
	Username string `form:"username" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"min=8,pwbytes"`
	ImageURL string `form:"image_url" validate:"omitempty,avatar"`
}

type CommentForm struct {
	Comment string `form:"comment"`
}

func init() {
	// Avatars may be absolute URLs or site-relative paths like the default.
	_ = validate.RegisterValidation("avatar", func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		if strings.HasPrefix(v, "/") {
			return true
		}
		return validate.Var(v, "url") == nil
	})
	// bcrypt rejects longer input, and multi-byte runes make max=72 too loose.
	_ = validate.RegisterValidation("pwbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= MaxPasswordBytes
	})
}

func ValidateSignup(f *SignupForm) error {
	trim(&f.Username, &f.Email, &f.ImageURL)
	return check(f)
}

func ValidateLogin(f *LoginForm) error {
	trim(&f.Username)
	return check(f)
}

func ValidateProfileEdit(f *ProfileEditForm) error {
	trim(&f.Username, &f.Email, &f.ImageURL)
	return check(f)
}

// ValidateComment accepts 1 to 140 characters after trimming.
func ValidateComment(text string) error {
	text = strings.TrimSpace(text)
	switch {
	case text == "":
		return common.NewValidationError(common.FieldError{Field: "comment", Message: MsgCommentBlank})
	case utf8.RuneCountInString(text) > models.MaxCommentLength:
		return common.NewValidationError(common.FieldError{Field: "comment", Message: MsgCommentLong})
	}
	return nil
}

func check(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make([]common.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, common.FieldError{
			Field:   fieldName(fe),
			Message: message(fe),
		})
	}
	return common.NewValidationError(fields...)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "email":
		return MsgInvalidEmail
	case "min":
		if fe.Field() == "Password" {
			return MsgPasswordLen
		}
	case "pwbytes":
		return MsgPasswordLong
	case "avatar":
		return MsgURL
	}
	return "Invalid value."
}

// fieldName maps a struct field to its form input name.
func fieldName(fe validator.FieldError) string {
	switch fe.Field() {
	case "ImageURL":
		return "image_url"
	default:
		return strings.ToLower(fe.Field())
	}
}

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
