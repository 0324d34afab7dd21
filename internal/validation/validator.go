// Package validation validates service specs before a project is built
// from them.
//
// It combines struct-level validation (go-playground/validator) with
// fig-specific rules the tags cannot express: a service needs exactly
// one of image or build, and port entries must parse.
//
// # Usage Example
//
//	result := validation.New().ValidateSpecs(specs)
//	if !result.Valid {
//	    for _, err := range result.Errors {
//	        fmt.Printf("%s: %s\n", err.Field, err.Message)
//	    }
//	}
package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/KyleAMathews/fig/models"
)

// Validator validates service specs.
type Validator struct {
	structValidator *validator.Validate
}

// ValidationError represents a single validation error with field-level
// details.
type ValidationError struct {
	// Field is the name of the field that failed validation
	Field string `json:"field"`

	// Message describes why the validation failed
	Message string `json:"message"`

	// Value is the invalid value that caused the error (optional)
	Value interface{} `json:"value,omitempty"`
}

// ValidationResult represents the complete result of a validation
// operation.
type ValidationResult struct {
	// Valid is true if validation passed, false otherwise
	Valid bool `json:"valid"`

	// Errors contains all validation errors found (empty if Valid is true)
	Errors []ValidationError `json:"errors,omitempty"`
}

// New creates a ready-to-use Validator.
func New() *Validator {
	return &Validator{
		structValidator: validator.New(),
	}
}

// ValidateSpecs validates a batch of service specs. All specs are
// checked so the result reports every problem at once.
func (v *Validator) ValidateSpecs(specs []models.ServiceSpec) ValidationResult {
	result := ValidationResult{Valid: true}

	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if seen[spec.Name] {
			result.addError(spec.Name, "duplicate service name", spec.Name)
			continue
		}
		seen[spec.Name] = true

		v.validateSpec(spec, &result)
	}

	return result
}

func (v *Validator) validateSpec(spec models.ServiceSpec, result *ValidationResult) {
	if err := v.structValidator.Struct(spec); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			for _, fe := range fieldErrors {
				result.addError(
					fmt.Sprintf("%s.%s", spec.Name, fe.Field()),
					fmt.Sprintf("failed %s validation", fe.Tag()),
					fe.Value(),
				)
			}
		} else {
			result.addError(spec.Name, err.Error(), nil)
		}
		return
	}

	hasImage := spec.Image != ""
	hasBuild := spec.Build != ""
	switch {
	case hasImage && hasBuild:
		result.addError(spec.Name, "service cannot have both image and build", nil)
	case !hasImage && !hasBuild:
		result.addError(spec.Name, "service needs either an image or a build directory", nil)
	}

	for _, entry := range spec.Ports {
		if _, err := models.ParsePort(entry); err != nil {
			result.addError(fmt.Sprintf("%s.ports", spec.Name), err.Error(), entry)
		}
	}

	for _, link := range spec.Links {
		if link == "" {
			result.addError(fmt.Sprintf("%s.links", spec.Name), "empty link name", nil)
		}
	}
}

func (r *ValidationResult) addError(field, message string, value interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	})
}

// Err flattens a failed result into a single error, nil when valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	if len(r.Errors) == 1 {
		return fmt.Errorf("%s: %s", r.Errors[0].Field, r.Errors[0].Message)
	}
	return fmt.Errorf("%s: %s (and %d more errors)", r.Errors[0].Field, r.Errors[0].Message, len(r.Errors)-1)
}
