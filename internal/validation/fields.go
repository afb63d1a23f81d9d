package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/czarnick89/workout-tracker/internal/domain"
)

// maxInt is the upper bound of the integer columns.
const maxInt = 2147483647

var trailingZeroFraction = regexp.MustCompile(`\.0*$`)

// present reports whether the client sent the field at all. A JSON null
// counts as present.
func present(raw json.RawMessage) bool {
	return len(raw) > 0
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// jsonType names the JSON type of raw the way the messages spell it.
func jsonType(raw json.RawMessage) string {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return "NoneType"
	}
	switch b[0] {
	case '"':
		return "str"
	case '{':
		return "dict"
	case '[':
		return "list"
	case 't', 'f':
		return "bool"
	case 'n':
		return "NoneType"
	}
	if bytes.ContainsAny(b, ".eE") {
		return "float"
	}
	return "int"
}

// scalarText returns the text of a JSON string or number. ok is false for
// every other JSON type.
func scalarText(raw json.RawMessage) (string, bool) {
	switch jsonType(raw) {
	case "str":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case "int", "float":
		return string(bytes.TrimSpace(raw)), true
	}
	return "", false
}

// check runs ozzo rules against an already coerced value and records the
// first failing rule's message.
func check(errs Errors, field string, value any, rules ...validation.Rule) bool {
	if err := validation.Validate(value, rules...); err != nil {
		errs.Add(field, err.Error())
		return false
	}
	return true
}

func stringField(errs Errors, field string, raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		errs.Add(field, MsgNull)
		return "", false
	}
	s, ok := scalarText(raw)
	if !ok {
		errs.Add(field, MsgInvalidStr)
		return "", false
	}
	return strings.TrimSpace(s), true
}

func intField(errs Errors, field string, raw json.RawMessage) (int, bool) {
	if isNull(raw) {
		errs.Add(field, MsgNull)
		return 0, false
	}
	s, ok := scalarText(raw)
	if !ok {
		errs.Add(field, MsgInvalidInt)
		return 0, false
	}
	s = trailingZeroFraction.ReplaceAllString(strings.TrimSpace(s), "")
	v, err := strconv.Atoi(s)
	if err != nil {
		errs.Add(field, MsgInvalidInt)
		return 0, false
	}
	return v, true
}

func decimalField(errs Errors, field string, raw json.RawMessage) (decimal.Decimal, bool) {
	if isNull(raw) {
		errs.Add(field, MsgNull)
		return decimal.Decimal{}, false
	}
	s, ok := scalarText(raw)
	if !ok {
		errs.Add(field, MsgInvalidNum)
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		errs.Add(field, MsgInvalidNum)
		return decimal.Decimal{}, false
	}
	return d, true
}

func dateField(errs Errors, field string, raw json.RawMessage) (time.Time, bool) {
	if isNull(raw) {
		errs.Add(field, MsgNull)
		return time.Time{}, false
	}
	var s string
	if jsonType(raw) != "str" || json.Unmarshal(raw, &s) != nil {
		errs.Add(field, MsgInvalidDate)
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(domain.DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		errs.Add(field, MsgInvalidDate)
		return time.Time{}, false
	}
	return d, true
}

// pkField coerces a reference to another row. A value below 1 can never
// resolve, so it is reported as a missing row straight away.
func pkField(errs Errors, field string, raw json.RawMessage) (uint, bool) {
	if isNull(raw) {
		errs.Add(field, MsgNull)
		return 0, false
	}
	s, ok := scalarText(raw)
	if !ok {
		errs.Addf(field, MsgPKType, jsonType(raw))
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		errs.Addf(field, MsgPKType, jsonType(raw))
		return 0, false
	}
	if v < 1 {
		errs.Addf(field, MsgDoesNotExist, v)
		return 0, false
	}
	return uint(v), true
}

// tagField reads the optional identifier of a nested item. Null, zero and
// negative values leave the item untagged; none of them can match a row.
func tagField(errs Errors, field string, raw json.RawMessage) (*uint, bool) {
	if !present(raw) || isNull(raw) {
		return nil, true
	}
	s, ok := scalarText(raw)
	if !ok {
		errs.Add(field, MsgInvalidInt)
		return nil, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		errs.Add(field, MsgInvalidInt)
		return nil, false
	}
	if v < 1 {
		return nil, true
	}
	id := uint(v)
	return &id, true
}

func listField(errs Errors, field string, raw json.RawMessage) ([]json.RawMessage, bool) {
	if isNull(raw) {
		errs.Add(field, MsgNull)
		return nil, false
	}
	if jsonType(raw) != "list" {
		errs.Addf(field, MsgNotAList, jsonType(raw))
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		errs.Addf(field, MsgNotAList, jsonType(raw))
		return nil, false
	}
	return items, true
}

// objectItem decodes one nested list item into dst.
func objectItem(errs Errors, key string, raw json.RawMessage, dst any) bool {
	if jsonType(raw) != "dict" {
		errs.Addf(key, MsgNotAnObject, jsonType(raw))
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		errs.Addf(key, MsgNotAnObject, jsonType(raw))
		return false
	}
	return true
}

func maxLength(n int) validation.Rule {
	return validation.RuneLength(0, n).Error(fmt.Sprintf(MsgMaxLength, n))
}

func minValue(n int) validation.Rule {
	return validation.Min(n).Error(fmt.Sprintf(MsgMinValue, n))
}

func maxValue(n int) validation.Rule {
	return validation.Max(n).Error(fmt.Sprintf(MsgMaxValue, n))
}

// nonZero rejects a zero int with the min-value message; ozzo's Min treats
// zero as empty and skips it.
func nonZero(n int) validation.Rule {
	return validation.Required.Error(fmt.Sprintf(MsgMinValue, n))
}

// decimalPrecision enforces a fixed-precision column: at most maxDigits
// digits in total and at most places after the point. Values are never
// rounded to fit.
func decimalPrecision(maxDigits, places int) validation.Rule {
	return validation.By(func(value interface{}) error {
		d, ok := value.(decimal.Decimal)
		if !ok {
			return errors.New(MsgInvalidNum)
		}
		digits := len(d.Coefficient().String())
		if d.Coefficient().Sign() < 0 {
			digits--
		}
		exp := int(d.Exponent())

		var total, decimals int
		switch {
		case exp >= 0:
			total = digits + exp
		case digits > -exp:
			total = digits
			decimals = -exp
		default:
			total = -exp
			decimals = -exp
		}
		whole := total - decimals

		switch {
		case total > maxDigits:
			return fmt.Errorf(MsgMaxDigits, maxDigits)
		case decimals > places:
			return fmt.Errorf(MsgMaxDecimals, places)
		case whole > maxDigits-places:
			return fmt.Errorf(MsgMaxWhole, maxDigits-places)
		}
		return nil
	})
}

func nonNegativeDecimal() validation.Rule {
	return validation.By(func(value interface{}) error {
		d, ok := value.(decimal.Decimal)
		if !ok || d.IsNegative() {
			return fmt.Errorf(MsgMinValue, 0)
		}
		return nil
	})
}
