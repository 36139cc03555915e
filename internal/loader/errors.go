package loader

import (
	"fmt"
)

// Load error codes (E001-E099).
const (
	ErrCodeGeneric   = "E001" // generic/unknown error
	ErrCodeScan      = "E002" // directory traversal error
	ErrCodeNoRoot    = "E003" // root directory missing or not a directory
	ErrCodeDecode    = "E004" // descriptor content cannot be decoded
	ErrCodeMissing   = "E005" // referenced file missing (include target)
	ErrCodeStructure = "E006" // descriptor failed structural vetting
)

// LoadError is a fatal error produced while loading the descriptor
// tree. The pipeline returns it as a value; the caller decides whether
// to terminate the process.
type LoadError struct {
	Code    string
	Path    string // offending file or directory, if known
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg != "" {
			msg = fmt.Sprintf("%s: %v", msg, e.Err)
		} else {
			msg = e.Err.Error()
		}
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Path, msg)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *LoadError) Unwrap() error { return e.Err }

func errf(code, path, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Path: path, Message: fmt.Sprintf(format, args...)}
}

func wrapf(code, path string, err error, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Path: path, Message: fmt.Sprintf(format, args...), Err: err}
}
