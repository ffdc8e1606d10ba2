package httpx

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate  = newValidator()
	enumsMu   sync.RWMutex
	enumValue = map[string]map[string]bool{}
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("absurl", validateAbsURL)
	return v
}

// validateAbsURL accepts absolute http(s) URLs with a host.
func validateAbsURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// RegisterEnum adds a validation tag that accepts exactly the given values.
func RegisterEnum(tag string, values ...string) {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}

	enumsMu.Lock()
	enumValue[tag] = set
	enumsMu.Unlock()

	_ = validate.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		enumsMu.RLock()
		defer enumsMu.RUnlock()
		return enumValue[tag][fl.Field().String()]
	})
}

// ValidateStruct returns one detail per failing field, or nil.
func ValidateStruct(s any) []ErrorDetail {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ErrorDetail{{Field: "", Message: err.Error()}}
	}

	details := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		param := fe.Param()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", field, param)
		case "max":
			message = fmt.Sprintf("%s must be at most %s", field, param)
		case "absurl":
			message = fmt.Sprintf("%s must be an absolute http(s) URL", field)
		case "uuid":
			message = fmt.Sprintf("%s must be a valid UUID", field)
		case "dive":
			message = fmt.Sprintf("%s contains an invalid entry", field)
		default:
			if allowed := enumValues(fe.Tag()); allowed != nil {
				message = fmt.Sprintf("%s must be one of: %s", field, strings.Join(allowed, ", "))
			} else {
				message = fmt.Sprintf("%s is invalid", field)
			}
		}

		details = append(details, ErrorDetail{Field: field, Message: message})
	}
	return details
}

func enumValues(tag string) []string {
	enumsMu.RLock()
	defer enumsMu.RUnlock()
	set, ok := enumValue[tag]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
