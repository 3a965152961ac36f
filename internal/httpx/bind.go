package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/MikeMC777/tienda-ecom/internal/validation"
)

func init() {
	// Report fields under their JSON names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "max":
		return fmt.Sprintf("ensure this field has no more than %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("ensure this value is greater than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}

// Translate turns a gin binding error into field-keyed messages. ok is false
// when err is not about a particular field.
func Translate(err error) (validation.Errors, bool) {
	var (
		ves validator.ValidationErrors
		ute *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &ves):
		v := validation.Errors{}
		for _, fe := range ves {
			v.Add(fe.Field(), message(fe))
		}
		return v, true
	case errors.As(err, &ute) && ute.Field != "":
		return validation.Errors{ute.Field: {fmt.Sprintf("expected a %s", ute.Type)}}, true
	}
	return nil, false
}

// BindJSON decodes the body into obj and writes a 400 when that fails.
func BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		if v, ok := Translate(err); ok {
			Invalid(c, http.StatusBadRequest, v)
			return false
		}
		Error(c, http.StatusBadRequest, "invalid json")
		return false
	}
	return true
}
