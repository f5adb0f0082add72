// Package etlerr holds the error taxonomy of a report run. Every error here is
// terminal for the run that produced it.
package etlerr

import "fmt"

// Stage names a transform stage.
type Stage string

const (
	StageCatalog           Stage = "Catalog"
	StageProduction        Stage = "Production"
	StageInvoice           Stage = "Invoice"
	StageApproval          Stage = "Approval"
	StageBacklog           Stage = "Backlog"
	StageBacklogEnrichment Stage = "BacklogEnrichment"
)

// ExtractionError reports a source file that is missing or could not be parsed.
type ExtractionError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extract %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("extract %s: %s", e.Path, e.Message)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

func NewFileNotFound(path string, cause error) *ExtractionError {
	return &ExtractionError{Path: path, Message: "file not found", Cause: cause}
}

func NewExtractionFailed(path string, cause error) *ExtractionError {
	return &ExtractionError{Path: path, Message: "extraction failed", Cause: cause}
}

// TransformError wraps whatever made a stage fail.
type TransformError struct {
	Stage   Stage
	Company string
	Cause   error
}

func (e *TransformError) Error() string {
	if e.Company != "" {
		return fmt.Sprintf("transform %s (%s): %v", e.Stage, e.Company, e.Cause)
	}
	return fmt.Sprintf("transform %s: %v", e.Stage, e.Cause)
}

func (e *TransformError) Unwrap() error { return e.Cause }

func NewTransformError(stage Stage, company string, cause error) *TransformError {
	return &TransformError{Stage: stage, Company: company, Cause: cause}
}

// ConversionError reports a cell that could not be cast to the kind its column requires.
type ConversionError struct {
	Column string
	Value  string
	Cause  error
}

func (e *ConversionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("numeric conversion on column %q (value %q): %v", e.Column, e.Value, e.Cause)
	}
	return fmt.Sprintf("numeric conversion on column %q (value %q)", e.Column, e.Value)
}

func (e *ConversionError) Unwrap() error { return e.Cause }

// WriteError reports a report artifact that could not be produced.
type WriteError struct {
	Path  string
	Cause error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write report %s: %v", e.Path, e.Cause)
}

func (e *WriteError) Unwrap() error { return e.Cause }
