package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/finsight/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidReport = errors.New("invalid stored report")
	ErrInvalidLimit  = errors.New("limit must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateStoredReport checks the columns the schema constrains.
func validateStoredReport(r *model.StoredReport) error {
	if r == nil {
		return fmt.Errorf("%w: report", ErrNilParameter)
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidReport, r.Kind)
	}
	if _, err := model.ParseProviderName(string(r.Provider)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	if r.HealthScore < 0 || r.HealthScore > 100 {
		return fmt.Errorf("%w: health score %d out of range", ErrInvalidReport, r.HealthScore)
	}
	return nil
}
