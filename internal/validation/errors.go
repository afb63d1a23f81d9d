// Package validation coerces raw client payloads into domain patches and
// collects every field violation it finds.
//
// Validators never stop at the first problem: a submission with three bad
// fields yields three keys. Nested list items are keyed
// "<list>.<index>.<field>".
package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Messages shared by the validators. The wording is part of the API.
const (
	MsgRequired     = "This field is required."
	MsgNull         = "This field may not be null."
	MsgBlank        = "This field may not be blank."
	MsgInvalidInt   = "A valid integer is required."
	MsgInvalidNum   = "A valid number is required."
	MsgInvalidStr   = "Not a valid string."
	MsgInvalidDate  = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	MsgMaxDigits    = "Ensure that there are no more than %d digits in total."
	MsgMaxDecimals  = "Ensure that there are no more than %d decimal places."
	MsgMaxWhole     = "Ensure that there are no more than %d digits before the decimal point."
	MsgMaxLength    = "Ensure this field has no more than %d characters."
	MsgMinValue     = "Ensure this value is greater than or equal to %d."
	MsgMaxValue     = "Ensure this value is less than or equal to %d."
	MsgPKType       = "Incorrect type. Expected pk value, received %s."
	MsgDoesNotExist = "Invalid pk \"%d\" - object does not exist."
	MsgNotAList     = "Expected a list of items but got type \"%s\"."
	MsgNotAnObject  = "Invalid data. Expected a dictionary, but got %s."

	// NonFieldErrors collects problems that belong to no single field.
	NonFieldErrors = "non_field_errors"
)

// Errors maps a field name to its violation messages in the order found.
// It implements error so it can travel up through service return values.
type Errors map[string][]string

// Add records msg against field.
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Addf records a formatted message against field.
func (e Errors) Addf(field, format string, args ...any) {
	e.Add(field, fmt.Sprintf(format, args...))
}

// Has reports whether field has at least one violation.
func (e Errors) Has(field string) bool {
	return len(e[field]) > 0
}

// Merge copies other into e, prefixing every key with prefix and a dot.
func (e Errors) Merge(prefix string, other Errors) {
	for field, msgs := range other {
		key := field
		if prefix != "" {
			key = prefix + "." + field
		}
		e[key] = append(e[key], msgs...)
	}
}

// Err returns nil when e is empty and e otherwise.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// DoesNotExist records the violation for a reference that did not resolve.
func DoesNotExist(errs Errors, field string, id uint) {
	errs.Addf(field, MsgDoesNotExist, id)
}

// ItemField joins a list field, an item index and a field name into the key
// used for nested violations.
func ItemField(list string, index int, field string) string {
	return fmt.Sprintf("%s.%d.%s", list, index, field)
}
