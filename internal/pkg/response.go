package pkg

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/companyemployees/internal/domain"
)

// Response is the standard JSON envelope for API responses.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse is the JSON envelope for validation error responses.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// Success sends a 200 JSON response with the given data.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

// Created sends a 201 JSON response and points Location at the new resource.
func Created(c *gin.Context, location string, data any) {
	if location != "" {
		c.Header("Location", location)
	}
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

// NoContent sends an empty 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends a JSON error response. If err is a *domain.AppError, its kind is
// mapped to the appropriate HTTP status; otherwise 500 is returned.
// Server errors are logged with the full error chain; their message is not exposed.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)

	var appErr *domain.AppError
	msg := "internal error"
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		msg = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}

	c.JSON(status, Response{
		Code:    status,
		Message: msg,
		Data:    nil,
	})
}

// List sends a 200 JSON response for a page of results. The items go into the
// body and the metadata into the X-Pagination header.
func List[T any](c *gin.Context, result *domain.PagedResult[T]) {
	SetPaginationHeader(c, result.MetaData)
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    result.Items,
	})
}

// ValidationError sends a 400 response. Validator errors are reported per
// field; anything else (malformed JSON, wrong types) is a plain bad request.
func ValidationError(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: "bad request"})
		return
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fieldKey(fe)] = fieldErrorMessage(fe)
	}
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fields,
	})
}

// BindAndValidate binds the JSON body into obj. On failure it writes the
// ValidationError response and returns false:
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		ValidationError(c, err)
		return false
	}
	return true
}

// Binding errors name fields by their JSON tag.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonFieldName)
	}
}

func jsonFieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

// fieldKey renders the failing field's path below the root struct, such as
// "name" or "employees[0].age".
func fieldKey(fe validator.FieldError) string {
	_, path, ok := strings.Cut(fe.Namespace(), ".")
	if !ok {
		path = fe.Field()
	}
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		segments[i] = lowerFirst(seg)
	}
	return strings.Join(segments, ".")
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

var fieldMessages = map[string]string{
	"required":    "This field is required",
	"email":       "Must be a valid email address",
	"gte":         "Must be greater than or equal to %s",
	"lte":         "Must be less than or equal to %s",
	"containsany": "Must contain at least one of %q",
	"dive":        "Invalid element",
}

func fieldErrorMessage(fe validator.FieldError) string {
	if fe.Tag() == "min" || fe.Tag() == "max" {
		bound := "at least"
		if fe.Tag() == "max" {
			bound = "at most"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Must be %s %s characters", bound, fe.Param())
		}
		return fmt.Sprintf("Must be %s %s", bound, fe.Param())
	}
	if msg, ok := fieldMessages[fe.Tag()]; ok {
		if strings.Contains(msg, "%") {
			return fmt.Sprintf(msg, fe.Param())
		}
		return msg
	}
	if fe.Param() != "" {
		return fe.Tag() + "=" + fe.Param()
	}
	return fe.Tag()
}
