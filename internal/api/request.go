package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/czarnick89/workout-tracker/internal/validation"
)

const maxBodyBytes = 1 << 20

// decodePayload reads a JSON object body into dst. Field values are kept
// raw for the validators, so only the body's shape is checked here. An
// empty body decodes as an empty object.
func decodePayload(c *gin.Context, dst any) error {
	if err := checkContentType(c); err != nil {
		return err
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read request body: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}

	if body[0] != '{' {
		var decoded any
		if err := json.Unmarshal(body, &decoded); err != nil {
			return parseError(err)
		}
		errs := validation.Errors{}
		errs.Addf(validation.NonFieldErrors, validation.MsgNotAnObject, jsonKind(decoded))
		return errs
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return parseError(err)
	}
	return nil
}

func checkContentType(c *gin.Context) error {
	header := c.GetHeader("Content-Type")
	if header == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil || mediaType != binding.MIMEJSON {
		return &HTTPError{
			Status: http.StatusUnsupportedMediaType,
			Detail: `Unsupported media type "` + header + `" in request.`,
		}
	}
	return nil
}

func parseError(err error) error {
	errs := validation.Errors{}
	errs.Add(validation.NonFieldErrors, "JSON parse error - "+err.Error())
	return errs
}

func jsonKind(v any) string {
	switch v.(type) {
	case []any:
		return "list"
	case string:
		return "str"
	case float64:
		return "int"
	case bool:
		return "bool"
	default:
		return "null"
	}
}

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json names,
// which is what clients see in error maps.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON binds a request DTO with gin and turns binding failures into
// field errors.
func bindJSON(c *gin.Context, dst any) error {
	if err := checkContentType(c); err != nil {
		return err
	}
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	errs := validation.Errors{}
	var fieldErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &fieldErrs):
		for _, fe := range fieldErrs {
			errs.Add(fe.Field(), bindingMessage(fe))
		}
	case errors.As(err, &typeErr) && typeErr.Field != "":
		errs.Add(typeErr.Field, validation.MsgInvalidStr)
	case errors.Is(err, io.EOF):
		// Empty body: report what is missing.
		if verr := binding.Validator.ValidateStruct(dst); verr != nil && errors.As(verr, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs.Add(fe.Field(), bindingMessage(fe))
			}
		}
	default:
		return parseError(err)
	}
	return errs
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return validation.MsgRequired
	case "min":
		return "Ensure this field has at least " + fe.Param() + " characters."
	case "max":
		n, _ := strconv.Atoi(fe.Param())
		return fmt.Sprintf(validation.MsgMaxLength, n)
	case "email":
		return "Enter a valid email address."
	default:
		return "Invalid value."
	}
}
