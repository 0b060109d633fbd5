// Package validate checks request structs against `validate` struct tags.
//
// Rules (comma-separated):
//
//	required   field must not be the zero value ("" , 0, nil); " " is present
//	nullable   skip the remaining rules when the field is empty
//	uuid       canonical UUID string
//	numeric    string parses as a number
//	min=N      number >= N, or string length >= N
//	max=N      number <= N, or string length <= N
//	gte=N      number >= N
//	lte=N      number <= N
//
// Example:
//
//	type CreateProductInput struct {
//	    Name  string  `json:"name"  validate:"required,max=255"`
//	    Price float64 `json:"price" validate:"required,gte=0"`
//	}
//
// required treats 0 as missing, so a count of 0 fails a required rule.
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Errors maps a JSON field name to its first failing rule's message.
type Errors map[string]string

// Struct validates the exported fields of v (a struct or pointer to one)
// that carry a `validate` tag. The result is empty when v is valid.
func Struct(v any) Errors {
	errs := Errors{}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		name := jsonName(field)
		value := rv.Field(i)
		rules := strings.Split(tag, ",")

		if contains(rules, "nullable") && isEmpty(value) {
			continue
		}

		for _, rule := range rules {
			if msg := check(strings.TrimSpace(rule), name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}
	return errs
}

// HasErrors reports whether errs holds any failure.
func HasErrors(errs Errors) bool { return len(errs) > 0 }

// Fields returns the failing field names, sorted.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func check(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
	case "uuid":
		if !uuidRE.MatchString(fmt.Sprint(v.Interface())) {
			return fmt.Sprintf("The %s must be a valid UUID.", field)
		}
	case "numeric":
		if _, err := strconv.ParseFloat(fmt.Sprint(v.Interface()), 64); err != nil {
			return fmt.Sprintf("The %s field must be a number.", field)
		}
	case "min", "gte":
		n := parseFloat(param)
		if isNumeric(v) && toFloat(v) < n {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
		if key == "min" && v.Kind() == reflect.String && float64(len([]rune(v.String()))) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
	case "max", "lte":
		n := parseFloat(param)
		if isNumeric(v) && toFloat(v) > n {
			return fmt.Sprintf("The %s must not be greater than %s.", field, param)
		}
		if key == "max" && v.Kind() == reflect.String && float64(len([]rune(v.String()))) > n {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}
	case "nullable", "":
	default:
		return fmt.Sprintf("The %s has an unknown validation rule %q.", field, key)
	}
	return ""
}

var uuidRE = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.Len() == 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	}
	return false
}

func isNumeric(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	default:
		return v.Float()
	}
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

func contains(rules []string, target string) bool {
	for _, r := range rules {
		if strings.TrimSpace(r) == target {
			return true
		}
	}
	return false
}
