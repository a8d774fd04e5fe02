package lineage

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrEmptyInput is returned when the input holds no statement.
	ErrEmptyInput = errors.New("no SQL statement in input")
	// ErrUnknownDialect is returned when Options.Dialect names no registered dialect.
	ErrUnknownDialect = errors.New("unknown dialect")
)

// ResolutionInconsistencyError reports an internally inconsistent lineage
// result, such as an edge naming a table that is neither read nor written,
// or a cycle between common table expressions. It always points at a
// resolver defect or at SQL no engine could execute.
type ResolutionInconsistencyError struct {
	Table  string
	Column string
	Reason string
}

func (e *ResolutionInconsistencyError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("lineage inconsistency for %s: %s", e.Table, e.Reason)
	}
	return fmt.Sprintf("lineage inconsistency for %s.%s: %s", e.Table, e.Column, e.Reason)
}

// WarningKind classifies a non-fatal extraction warning.
type WarningKind string

// Warning kinds.
const (
	UnsupportedConstruct   WarningKind = "UnsupportedConstructWarning"
	MultiTargetUnsupported WarningKind = "MultiTargetUnsupported"
)

// Warning is a non-fatal problem recorded in debug_info.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
	Line    int         `json:"line,omitempty"`
	Column  int         `json:"column,omitempty"`
}

func (w Warning) String() string {
	if w.Line == 0 {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%d:%d: %s: %s", w.Line, w.Column, w.Kind, w.Message)
}
