package inventory

import (
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/Simplici0/spooltrack/internal/models"
	"github.com/Simplici0/spooltrack/internal/store"
	"github.com/go-playground/validator/v10"
)

var (
	// ErrValidation is wrapped by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrSpoolUnavailable is returned when a print draws from an empty or archived spool.
	ErrSpoolUnavailable = errors.New("spool is empty or archived")
)

// ValidationError maps input field names to the rule they broke.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return fmt.Sprintf("validation failed (%s)", strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func fieldError(field, rule string) error {
	return &ValidationError{Fields: map[string]string{field: rule}}
}

// Service implements spool, print, printer and cost operations for a single owner at a time.
type Service struct {
	db       *sql.DB
	store    *store.Store
	validate *validator.Validate
	now      func() time.Time
}

func NewService(conn *sql.DB) *Service {
	return &Service{
		db:       conn,
		store:    store.New(conn),
		validate: NewValidator(),
		now:      time.Now,
	}
}

// NewValidator returns a validator that reports json field names and knows
// the domain enum tags. Handlers binding their own request types use it too.
func NewValidator() *validator.Validate {
	v := validator.New()

	// Report json field names so errors line up with request bodies.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	enums := map[string]func(string) bool{
		"material":       func(s string) bool { return models.Material(s).Valid() },
		"currency":       func(s string) bool { return models.Currency(s).Valid() },
		"spool_status":   func(s string) bool { return models.SpoolStatus(s).Valid() },
		"print_status":   func(s string) bool { return models.PrintStatus(s).Valid() },
		"printer_status": func(s string) bool { return models.PrinterStatus(s).Valid() },
	}
	for tag, ok := range enums {
		_ = v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return ok(fl.Field().String())
		})
	}
	_ = v.RegisterValidation("diameter", func(fl validator.FieldLevel) bool {
		d := fl.Field().Float()
		return d == models.Diameter175 || d == models.Diameter285
	})

	return v
}

// check runs struct tag validation and merges in any extra field errors.
func (s *Service) check(in any, extra map[string]string) error {
	fields := map[string]string{}
	if err := s.validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate input: %w", err)
		}
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	for k, v := range extra {
		if _, exists := fields[k]; !exists {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
