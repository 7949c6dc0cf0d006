// Package form declares one struct per submitted form and validates them
// with go-playground/validator. Each field carries its constraints as
// struct tags; Validate turns violations into a map of field name to
// error code ("required", "url", ...) for the templates to render inline.
package form

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RegisterForm backs POST /register.
type RegisterForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
	Name     string `form:"name" validate:"required"`
}

// LoginForm backs POST /login.
type LoginForm struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// PostForm backs POST /new-post and POST /edit-post/{postID}.
type PostForm struct {
	Title    string `form:"title" validate:"required"`
	Subtitle string `form:"subtitle" validate:"required"`
	ImgURL   string `form:"img_url" validate:"required,url"`
	Body     string `form:"body" validate:"required"`
}

// CommentForm backs POST /post/{postID}.
type CommentForm struct {
	Text string `form:"text" validate:"required"`
}

// Errors maps a form field name to the code of its first failed rule.
type Errors map[string]string

// Validate runs the declared rules for the given form. ok is true when the
// form is clean; otherwise errs holds one code per offending field.
func Validate(f any) (errs Errors, ok bool) {
	err := validate.Struct(f)
	if err == nil {
		return nil, true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Struct-level failure (nil pointer etc.) is a programming error,
		// not bad user input.
		panic(fmt.Sprintf("form: validating %T: %v", f, err))
	}

	errs = make(Errors, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		if fe.Field() == "ImgURL" {
			name = "img_url"
		}
		if _, seen := errs[name]; !seen {
			errs[name] = fe.Tag()
		}
	}
	return errs, false
}

// ParseRegister reads a RegisterForm from an urlencoded request body.
func ParseRegister(r *http.Request) RegisterForm {
	return RegisterForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Name:     strings.TrimSpace(r.PostFormValue("name")),
	}
}

// ParseLogin reads a LoginForm from an urlencoded request body.
func ParseLogin(r *http.Request) LoginForm {
	return LoginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
}

// ParsePost reads a PostForm from an urlencoded request body.
func ParsePost(r *http.Request) PostForm {
	return PostForm{
		Title:    strings.TrimSpace(r.PostFormValue("title")),
		Subtitle: strings.TrimSpace(r.PostFormValue("subtitle")),
		ImgURL:   strings.TrimSpace(r.PostFormValue("img_url")),
		Body:     r.PostFormValue("body"),
	}
}

// ParseComment reads a CommentForm from an urlencoded request body.
func ParseComment(r *http.Request) CommentForm {
	return CommentForm{
		Text: strings.TrimSpace(r.PostFormValue("text")),
	}
}
