// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
)

var (
	validate    = newValidator()
	formDecoder = newFormDecoder()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name so errors match the request body.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func newFormDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.SetAliasTag("json")
	d.IgnoreUnknownKeys(true)
	// HTML checkboxes submit "on".
	d.RegisterConverter(false, func(s string) reflect.Value {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "on", "yes", "true", "1":
			return reflect.ValueOf(true)
		case "", "off", "no", "false", "0":
			return reflect.ValueOf(false)
		}
		return reflect.Value{}
	})
	return d
}

// decodeInput fills dst from a JSON body or from url-encoded/multipart
// form values, depending on the Content-Type.
func decodeInput(w http.ResponseWriter, r *http.Request, dst any) bool {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return decodeJSON(w, r, dst)
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form body", "")
		return false
	}
	if err := formDecoder.Decode(dst, r.PostForm); err != nil {
		field := ""
		var multi schema.MultiError
		if errors.As(err, &multi) {
			for k := range multi {
				field = k
				break
			}
		}
		writeError(w, http.StatusBadRequest, "invalid form value", field)
		return false
	}
	return true
}

// decodeQuery fills dst from the URL query string.
func decodeQuery(r *http.Request, dst any) error {
	return formDecoder.Decode(dst, r.URL.Query())
}

// checkStruct validates v and writes a 422 naming the first failing field.
func checkStruct(w http.ResponseWriter, v any) bool {
	err := validate.Struct(v)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		writeError(w, http.StatusUnprocessableEntity, describe(fe), fe.Field())
		return false
	}
	writeError(w, http.StatusUnprocessableEntity, "invalid input", "")
	return false
}

// describe turns a validator failure into a short message.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must include at least " + fe.Param() + " item(s)"
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must include at most " + fe.Param() + " item(s)"
		}
		return "must be at most " + fe.Param() + " characters"
	}
	return "is invalid"
}

// trimStrings trims surrounding whitespace on every string field of the
// struct pointed to by v.
func trimStrings(v any) {
	rv := reflect.ValueOf(v).Elem()
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.CanSet() {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}

