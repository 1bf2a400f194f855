// Package links проверяет, что ссылки в пользовательском тексте ведут только на youtube.com.
package links

import (
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator"
)

// Tag имя правила валидации для полей с текстом или ссылкой.
const Tag = "links"

var urlPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"']+`)

var allowedHosts = []string{"youtube.com", "youtu.be"}

// Valid возвращает false, если в тексте есть ссылка на сторонний ресурс.
func Valid(text string) bool {
	for _, raw := range urlPattern.FindAllString(text, -1) {
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil || !allowedHost(u.Hostname()) {
			return false
		}
	}
	return true
}

func allowedHost(host string) bool {
	host = strings.ToLower(host)
	for _, h := range allowedHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// NewValidator возвращает validator.Validate с зарегистрированным правилом links.
// В ошибках поля называются по json-тегам.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation(Tag, func(fl validator.FieldLevel) bool {
		return Valid(fl.Field().String())
	})
	return v
}
