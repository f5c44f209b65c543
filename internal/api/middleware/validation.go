package middleware

import (
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"interview-capture/internal/api/errors"
)

// Validator is implemented by requests with rules beyond struct tags
type Validator interface {
	Validate() error
}

var wireNames sync.Once

// useWireNames makes validation errors report the json or form key instead of the Go field
func useWireNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.Split(f.Tag.Get(tag), ",")[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// BindJSON decodes the body into req and validates struct tags and domain rules
func BindJSON(c *gin.Context, req interface{}) error {
	wireNames.Do(useWireNames)
	return bind(req, c.ShouldBindJSON(req), "request", "invalid JSON body")
}

// BindForm decodes a form or multipart body into req
func BindForm(c *gin.Context, req interface{}) error {
	wireNames.Do(useWireNames)
	return bind(req, c.ShouldBind(req), "form", "invalid form body")
}

// BindQuery decodes query parameters into req
func BindQuery(c *gin.Context, req interface{}) error {
	wireNames.Do(useWireNames)
	return bind(req, c.ShouldBindQuery(req), "query", "invalid query parameters")
}

func bind(req interface{}, err error, scope, fallback string) error {
	if err != nil {
		details := make(map[string]string)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				details[fe.Field()] = describe(fe)
			}
		} else {
			details[scope] = fallback
		}
		return errors.NewValidationError("Validation failed", details)
	}

	if v, ok := req.(Validator); ok {
		return v.Validate()
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
