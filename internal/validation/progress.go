package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/templui/incomeatlas/internal/model"
)

// ErrBodyTooLarge is returned when the body exceeds the reader's byte limit.
var ErrBodyTooLarge = errors.New("request body too large")

// ProgressInput is the accepted body of a progress update. A nil field was
// absent from the request and leaves the stored value unchanged. Explicit
// nulls are rejected by DecodeProgress.
type ProgressInput struct {
	Status      *string `json:"status" validate:"omitnil,oneof=interested started completed"`
	Notes       *string `json:"notes" validate:"omitnil,max=10000"`
	StartedAt   *string `json:"startedAt" validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
	CompletedAt *string `json:"completedAt" validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
	Results     *string `json:"results" validate:"omitnil,max=10000"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries per-field problems for a 400 response.
type ValidationError struct {
	Details []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+": "+d.Message)
	}
	return "invalid progress data: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeProgress reads a progress update from body. Unknown fields, nulls,
// wrong types and values outside the allowed set are rejected with a
// *ValidationError. An empty body is an empty update. A body cut off by
// http.MaxBytesReader yields ErrBodyTooLarge.
func DecodeProgress(body io.Reader) (model.ProgressUpdate, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return model.ProgressUpdate{}, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)
		}
		return model.ProgressUpdate{}, fmt.Errorf("failed to read body: %w", err)
	}

	var input ProgressInput

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	err = dec.Decode(&input)
	if err != nil && !errors.Is(err, io.EOF) {
		return model.ProgressUpdate{}, decodeError(err)
	}
	if err == nil && dec.More() {
		return model.ProgressUpdate{}, &ValidationError{Details: []FieldError{{Field: "body", Message: "must contain a single JSON object"}}}
	}

	if verr := nullFields(data); verr != nil {
		return model.ProgressUpdate{}, verr
	}

	return ValidateProgress(input)
}

// nullFields reports every top-level member whose value is JSON null. data
// has already decoded into ProgressInput, so member names are known.
func nullFields(data []byte) *ValidationError {
	var members map[string]json.RawMessage
	if json.Unmarshal(data, &members) != nil {
		return nil
	}

	var details []FieldError
	for _, name := range []string{"status", "notes", "startedAt", "completedAt", "results"} {
		raw, ok := members[name]
		if ok && bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			details = append(details, FieldError{Field: name, Message: "must not be null"})
		}
	}
	if len(details) == 0 {
		return nil
	}
	return &ValidationError{Details: details}
}

// ValidateProgress checks input and converts it into a partial update.
func ValidateProgress(input ProgressInput) (model.ProgressUpdate, error) {
	err := validate.Struct(input)
	if err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return model.ProgressUpdate{}, fieldErrors(verrs)
		}
		return model.ProgressUpdate{}, err
	}

	var update model.ProgressUpdate
	if input.Status != nil {
		update.Status = model.Some(model.ProgressStatus(*input.Status))
	}
	if input.Notes != nil {
		update.Notes = model.Some(*input.Notes)
	}
	if input.StartedAt != nil {
		update.StartedAt = model.Some(*input.StartedAt)
	}
	if input.CompletedAt != nil {
		update.CompletedAt = model.Some(*input.CompletedAt)
	}
	if input.Results != nil {
		update.Results = model.Some(*input.Results)
	}

	return update, nil
}

func fieldErrors(verrs validator.ValidationErrors) *ValidationError {
	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		var msg string
		switch fe.Tag() {
		case "oneof":
			msg = "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
		case "datetime":
			msg = "must be an ISO-8601 timestamp"
		case "max":
			msg = fmt.Sprintf("must be at most %s characters", fe.Param())
		default:
			msg = "is invalid"
		}
		details = append(details, FieldError{Field: fe.Field(), Message: msg})
	}
	return &ValidationError{Details: details}
}

func decodeError(err error) *ValidationError {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return &ValidationError{Details: []FieldError{{Field: field, Message: "must be a " + jsonKind(typeErr.Type)}}}
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return &ValidationError{Details: []FieldError{{Field: "body", Message: "malformed JSON"}}}
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return &ValidationError{Details: []FieldError{{Field: field, Message: "is not allowed"}}}
	default:
		return &ValidationError{Details: []FieldError{{Field: "body", Message: "malformed JSON"}}}
	}
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Struct:
		return "object"
	default:
		return t.Kind().String()
	}
}
