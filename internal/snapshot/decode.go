// Package snapshot turns credit report data of any carrier shape into a
// validated domain.ReportSnapshot
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/ludo-technologies/credaudit/domain"
	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order when a date arrives as a string
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	time.DateTime,
	"01/02/2006",
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	decimalType = reflect.TypeOf(decimal.Decimal{})
)

// Decode converts input into a validated snapshot. A *domain.ReportSnapshot
// is returned as is and a domain.ReportSnapshot as a pointer to a copy; maps
// and other structs are decoded by field name.
func Decode(input any) (*domain.ReportSnapshot, error) {
	switch v := input.(type) {
	case nil:
		return nil, domain.NewInvalidInputError("snapshot is nil", nil)
	case *domain.ReportSnapshot:
		if v == nil {
			return nil, domain.NewInvalidInputError("snapshot is nil", nil)
		}
		if err := Validate(v); err != nil {
			return nil, err
		}
		return v, nil
	case domain.ReportSnapshot:
		snap := v
		if err := Validate(&snap); err != nil {
			return nil, err
		}
		return &snap, nil
	case map[string]any:
		return decodeMap(v)
	}

	fields, err := toMap(input)
	if err != nil {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("unsupported snapshot carrier %T", input), err)
	}
	return decodeMap(fields)
}

func decodeMap(fields map[string]any) (*domain.ReportSnapshot, error) {
	var dateErr *domain.DateParseError
	result := &domain.ReportSnapshot{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		Result:           result,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			dateHook(&dateErr),
			decimalHook,
			emptyStringToNilHook,
		),
	})
	if err != nil {
		return nil, domain.NewInvalidInputError("failed to create snapshot decoder", err)
	}

	if err := decoder.Decode(fields); err != nil {
		if dateErr != nil {
			return nil, dateErr
		}
		return nil, domain.NewInvalidInputError("failed to decode snapshot", err)
	}

	if err := Validate(result); err != nil {
		return nil, err
	}
	return result, nil
}

// toMap renders an arbitrary struct as a key/value map through its JSON form
func toMap(input any) (map[string]any, error) {
	data, err := json.Marshal(input)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("snapshot is not an object")
	}
	return fields, nil
}

// emptyStringToNilHook treats blank strings as absent for optional fields
func emptyStringToNilHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to.Kind() != reflect.Ptr {
		return data, nil
	}
	if s, ok := data.(string); ok && strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return data, nil
}

func dateHook(captured **domain.DateParseError) mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data any) (any, error) {
		if to != timeType || from.Kind() != reflect.String {
			return data, nil
		}
		t, err := ParseDate(reflect.ValueOf(data).String())
		if err != nil {
			var dpe *domain.DateParseError
			if errors.As(err, &dpe) && *captured == nil {
				*captured = dpe
			}
			return nil, err
		}
		return t, nil
	}
}

func decimalHook(from, to reflect.Type, data any) (any, error) {
	if to != decimalType {
		return data, nil
	}
	switch v := data.(type) {
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	case float32:
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int32:
		return decimal.NewFromInt32(v), nil
	}
	return data, nil
}

// ParseDate parses a report date in any of the accepted layouts. It never
// guesses: an unrecognised value is a DateParseError.
func ParseDate(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, domain.NewDateParseError(value, lastErr)
}
