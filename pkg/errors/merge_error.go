package errors

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Kind classifies where a merge failed.
type Kind string

const (
	KindInput     Kind = "input"
	KindProbe     Kind = "probe"
	KindTranscode Kind = "transcode"
	KindDelivery  Kind = "delivery"
	KindInternal  Kind = "internal"
)

type MergeError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *MergeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the kind to the response status. Delivery errors never
// reach a response but map to 500 for completeness.
func (e *MergeError) HTTPStatus() int {
	if e.Kind == KindInput {
		return 400
	}
	return 500
}

var (
	ErrMissingFiles = func(err error) *MergeError {
		return &MergeError{Kind: KindInput, Code: "missing_files", Message: "both intro and main video files are required", Err: err}
	}
	ErrInvalidUpload = func(message string, err error) *MergeError {
		return &MergeError{Kind: KindInput, Code: "invalid_upload", Message: message, Err: err}
	}
	ErrProbe = func(path string, err error) *MergeError {
		return &MergeError{Kind: KindProbe, Code: "probe_failed", Message: "could not read media streams of " + filepath.Base(path), Err: err}
	}
	// ErrTranscode carries the engine diagnostic as the message.
	ErrTranscode = func(diagnostic string, err error) *MergeError {
		if diagnostic == "" {
			diagnostic = "transcoding failed"
		}
		return &MergeError{Kind: KindTranscode, Code: "transcode_failed", Message: diagnostic, Err: err}
	}
	ErrDelivery = func(err error) *MergeError {
		return &MergeError{Kind: KindDelivery, Code: "delivery_failed", Message: "merged video could not be delivered", Err: err}
	}
	ErrInternal = func(err error) *MergeError {
		return &MergeError{Kind: KindInternal, Code: "internal_error", Message: "internal server error", Err: err}
	}
)

// IsKind reports whether err wraps a MergeError of kind.
func IsKind(err error, kind Kind) bool {
	var me *MergeError
	return errors.As(err, &me) && me.Kind == kind
}

// KindOf returns the kind of the MergeError wrapped by err, or KindInternal.
func KindOf(err error) Kind {
	var me *MergeError
	if errors.As(err, &me) {
		return me.Kind
	}
	return KindInternal
}
