// Package errors provides custom error types for the specgate system.
// Fatal conditions (missing sources, broken schemas, repair conflicts) are
// typed so callers can branch on them with errors.Is and the CLI can map
// them to an exit status.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is, As and Join re-export the standard library helpers so callers need a
// single errors import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Common sentinel errors for the specgate system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceMissing indicates that a source document is absent or cannot be opened
	ErrSourceMissing = errors.New("source document missing")

	// ErrSchemaInvalid indicates that a document violates its expected header or sheet contract
	ErrSchemaInvalid = errors.New("source schema invalid")

	// ErrUnreadable indicates that a document or sheet could not be read at all
	ErrUnreadable = errors.New("document unreadable")

	// ErrRepairConflict indicates that a repair's position assumption no longer holds
	ErrRepairConflict = errors.New("repair conflict")

	// ErrConcurrentModification indicates that a document changed between load and commit
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrGateFailed indicates that at least one hard-gating check failed
	ErrGateFailed = errors.New("gate failed")
)

// Exit statuses reported by the CLI.
const (
	ExitOK     = 0
	ExitFailed = 1
	ExitFatal  = 2
)

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// SourceMissingError reports a source document that is absent or cannot be opened.
type SourceMissingError struct {
	Document string // logical name, e.g. "requirements registry"
	Path     string
	Err      error
}

// Error implements the error interface
func (e *SourceMissingError) Error() string {
	msg := fmt.Sprintf("source document %s missing", e.Document)
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements errors.Unwrap
func (e *SourceMissingError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *SourceMissingError) Is(target error) bool {
	return target == ErrSourceMissing
}

// NewSourceMissingError creates a new SourceMissingError
func NewSourceMissingError(document, path string, err error) *SourceMissingError {
	return &SourceMissingError{Document: document, Path: path, Err: err}
}

// SchemaError reports a document whose header row or sheet set does not
// match the contract the loader depends on.
type SchemaError struct {
	Document string
	Sheet    string
	Expected string
	Message  string
}

// Error implements the error interface
func (e *SchemaError) Error() string {
	where := e.Document
	if e.Sheet != "" {
		where += "/" + e.Sheet
	}
	if e.Expected != "" {
		return fmt.Sprintf("schema error in %s: %s (expected %s)", where, e.Message, e.Expected)
	}
	return fmt.Sprintf("schema error in %s: %s", where, e.Message)
}

// Is implements errors.Is support
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchemaInvalid
}

// NewSchemaError creates a new SchemaError
func NewSchemaError(document, sheet, expected, message string) *SchemaError {
	return &SchemaError{Document: document, Sheet: sheet, Expected: expected, Message: message}
}

// UnreadableError reports a document or sheet that could not be read.
type UnreadableError struct {
	Document string
	Sheet    string
	Err      error
}

// Error implements the error interface
func (e *UnreadableError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("cannot read sheet %s of %s: %v", e.Sheet, e.Document, e.Err)
	}
	return fmt.Sprintf("cannot read %s: %v", e.Document, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *UnreadableError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *UnreadableError) Is(target error) bool {
	return target == ErrUnreadable
}

// NewUnreadableError creates a new UnreadableError
func NewUnreadableError(document, sheet string, err error) *UnreadableError {
	return &UnreadableError{Document: document, Sheet: sheet, Err: err}
}

// RepairError reports a repair whose fixed-position assumption does not
// hold for the current document.
type RepairError struct {
	Sheet   string
	Row     int
	Col     int
	Message string
}

// Error implements the error interface
func (e *RepairError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("repair conflict in %s at R%dC%d: %s", e.Sheet, e.Row, e.Col, e.Message)
	}
	return fmt.Sprintf("repair conflict in %s: %s", e.Sheet, e.Message)
}

// Is implements errors.Is support
func (e *RepairError) Is(target error) bool {
	return target == ErrRepairConflict
}

// NewRepairError creates a new RepairError
func NewRepairError(sheet string, row, col int, message string) *RepairError {
	return &RepairError{Sheet: sheet, Row: row, Col: col, Message: message}
}

// ConflictError reports a document that changed on disk after it was loaded.
type ConflictError struct {
	Path     string
	Expected string
	Actual   string
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s changed since it was loaded (hash %s, now %s)", e.Path, short(e.Expected), short(e.Actual))
}

// Is implements errors.Is support
func (e *ConflictError) Is(target error) bool {
	return target == ErrConcurrentModification
}

// NewConflictError creates a new ConflictError
func NewConflictError(path, expected, actual string) *ConflictError {
	return &ConflictError{Path: path, Expected: expected, Actual: actual}
}

// GateFailedError is returned when hard-gating checks fail.
type GateFailedError struct {
	HardFailures int
	Checks       []string
}

// Error implements the error interface
func (e *GateFailedError) Error() string {
	if len(e.Checks) > 0 {
		return fmt.Sprintf("gate failed: %d hard check(s) failed: %s", e.HardFailures, strings.Join(e.Checks, ", "))
	}
	return fmt.Sprintf("gate failed: %d hard check(s) failed", e.HardFailures)
}

// Is implements errors.Is support
func (e *GateFailedError) Is(target error) bool {
	return target == ErrGateFailed
}

// NewGateFailedError creates a new GateFailedError
func NewGateFailedError(failures int, checks []string) *GateFailedError {
	return &GateFailedError{HardFailures: failures, Checks: checks}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "csv", "xlsx", "yaml", etc.
	File    string
	Line    int
	Column  int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d:%d: %s", e.Format, e.File, e.Line, e.Column, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during I/O operations
type IOError struct {
	Operation string // "read", "write", "create", "rename", "open", "close"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsSourceMissing checks if an error reports a missing source document
func IsSourceMissing(err error) bool {
	return errors.Is(err, ErrSourceMissing)
}

// IsSchemaInvalid checks if an error reports a broken document contract
func IsSchemaInvalid(err error) bool {
	return errors.Is(err, ErrSchemaInvalid)
}

// IsRepairConflict checks if an error reports a failed repair assumption
func IsRepairConflict(err error) bool {
	return errors.Is(err, ErrRepairConflict)
}

// IsConcurrentModification checks if an error reports a document changed under us
func IsConcurrentModification(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsGateFailed checks if an error reports hard-gating failures
func IsGateFailed(err error) bool {
	return errors.Is(err, ErrGateFailed)
}

// ExitCode maps an error to the CLI exit status. Gate failures exit with
// ExitFailed; every other error is fatal.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case IsGateFailed(err):
		return ExitFailed
	default:
		return ExitFatal
	}
}

// Helper wrapping functions for common patterns

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
