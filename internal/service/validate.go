package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"noise_monitor/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports failures under JSON field names instead of Go names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ParseReading decodes and validates a raw reading payload.
// It returns ErrInvalidPayload for non-JSON bodies and *ValidationError
// listing every failing field otherwise.
func ParseReading(raw []byte) (models.ReadingInput, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		return models.ReadingInput{}, err
	}

	var in models.ReadingInput
	verr := newValidationError()

	decodeField(fields, "deviceId", &in.DeviceID, verr)
	decodeField(fields, "noiseLevel", &in.NoiseLevel, verr)
	decodeField(fields, "noiseMax", &in.NoiseMax, verr)
	decodeField(fields, "recordedAt", &in.RecordedAt, verr)
	decodeField(fields, "batteryLevel", &in.BatteryLevel, verr)
	decodeField(fields, "temperature", &in.Temperature, verr)
	decodeField(fields, "humidity", &in.Humidity, verr)
	decodeField(fields, "status", &in.Status, verr)
	in.Metadata = decodeMetadata(fields, verr)
	in.Thresholds = decodeThresholds(fields, verr)
	decodeField(fields, "payload", &in.Payload, verr)

	collectRuleErrors(validate.Struct(in), verr)

	if !verr.empty() {
		return models.ReadingInput{}, verr
	}
	return in, nil
}

// ParseIngestToggle decodes the {"enabled": bool} body of the gate toggle.
func ParseIngestToggle(raw []byte) (bool, error) {
	fields, err := decodeObject(raw)
	if err != nil {
		// the toggle reports non-JSON bodies as a validation failure
		verr := newValidationError()
		verr.addForm("expected object")
		return false, verr
	}

	var enabled *bool
	verr := newValidationError()
	decodeField(fields, "enabled", &enabled, verr)
	if enabled == nil && !verr.hasField("enabled") {
		verr.addField("enabled", "required")
	}
	if !verr.empty() {
		return false, verr
	}
	return *enabled, nil
}

// decodeObject splits a JSON object into raw top-level members.
// Empty, malformed and falsy bodies (null, false, 0, "") are ErrInvalidPayload.
func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) || isFalsy(trimmed) {
		return nil, ErrInvalidPayload
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		verr := newValidationError()
		verr.addForm("expected object, received " + jsonKindOf(trimmed))
		return nil, verr
	}
	return fields, nil
}

func isFalsy(v []byte) bool {
	switch v[0] {
	case 'n', 'f':
		return true
	case '"':
		return len(v) == 2
	case '{', '[', 't':
		return false
	default:
		f, err := strconv.ParseFloat(string(v), 64)
		return err == nil && f == 0
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeField decodes one top-level member into dst.
func decodeField[T any](fields map[string]json.RawMessage, name string, dst *T, verr *ValidationError) {
	decodeFieldAt(fields, "", name, dst, verr)
}

// decodeFieldAt decodes one member into dst, recording a type error under
// prefix.name. Absent and null members leave dst untouched.
func decodeFieldAt[T any](fields map[string]json.RawMessage, prefix, name string, dst *T, verr *ValidationError) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		path, msg := describeDecodeError(joinPath(prefix, name), raw, err)
		verr.addField(path, msg)
		return
	}
	*dst = v
}

// objectMember returns the members of the nested object fields[name].
// ok is false when it is absent, null or not an object.
func objectMember(fields map[string]json.RawMessage, prefix, name string, verr *ValidationError) (map[string]json.RawMessage, bool) {
	raw, ok := fields[name]
	if !ok || isNull(raw) {
		return nil, false
	}
	var sub map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sub); err != nil {
		verr.addField(joinPath(prefix, name), "expected object, received "+jsonKindOf(raw))
		return nil, false
	}
	return sub, true
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

// decodeMetadata decodes metadata member by member so that every bad
// field is reported.
func decodeMetadata(fields map[string]json.RawMessage, verr *ValidationError) *models.ReadingMetadata {
	sub, ok := objectMember(fields, "", "metadata", verr)
	if !ok {
		return nil
	}
	var m models.ReadingMetadata
	decodeFieldAt(sub, "metadata", "propertyId", &m.PropertyID, verr)
	decodeFieldAt(sub, "metadata", "propertyName", &m.PropertyName, verr)
	decodeFieldAt(sub, "metadata", "roomNumber", &m.RoomNumber, verr)
	decodeFieldAt(sub, "metadata", "location", &m.Location, verr)
	decodeFieldAt(sub, "metadata", "floor", &m.Floor, verr)
	decodeFieldAt(sub, "metadata", "notes", &m.Notes, verr)
	return &m
}

func decodeThresholds(fields map[string]json.RawMessage, verr *ValidationError) *models.ReadingThresholds {
	sub, ok := objectMember(fields, "", "thresholds", verr)
	if !ok {
		return nil
	}
	return &models.ReadingThresholds{
		Normal:  decodeRange(sub, "thresholds", "normal", verr),
		Night:   decodeRange(sub, "thresholds", "night", verr),
		Holiday: decodeRange(sub, "thresholds", "holiday", verr),
	}
}

func decodeRange(fields map[string]json.RawMessage, prefix, name string, verr *ValidationError) *models.Range {
	sub, ok := objectMember(fields, prefix, name, verr)
	if !ok {
		return nil
	}
	path := joinPath(prefix, name)
	var r models.Range
	decodeFieldAt(sub, path, "min", &r.Min, verr)
	decodeFieldAt(sub, path, "max", &r.Max, verr)
	return &r
}

func describeDecodeError(name string, raw json.RawMessage, err error) (string, string) {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) {
		path := name
		if ute.Field != "" {
			path = name + "." + ute.Field
		}
		return path, fmt.Sprintf("expected %s, received %s", jsonKindOfType(ute.Type), ute.Value)
	}
	return name, "invalid value, received " + jsonKindOf(raw)
}

// collectRuleErrors merges validator failures into verr. Fields that
// already failed to decode keep only their type error.
func collectRuleErrors(err error, verr *ValidationError) {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return
	}
	for _, fe := range ves {
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		if verr.hasField(path) {
			continue
		}
		verr.addField(path, ruleMessage(fe))
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must be an RFC3339 date-time"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

func jsonKindOfType(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Float32, reflect.Float64, reflect.Int, reflect.Int64:
		return "number"
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return t.Kind().String()
	}
}

func jsonKindOf(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "nothing"
	}
	switch trimmed[0] {
	case '{':
		return "object"
	case '[':
		return "array"
	case '"':
		return "string"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "number"
	}
}
