package migrate

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is matched (via `errors.Is`) by every error caused by
// input that doesn't have the shape of a resource list.
var ErrMalformedInput = errors.New("malformed input")

// MalformedRecordError identifies the record (by its position in `items`) and
// the field that prevented the run from completing.
type MalformedRecordError struct {
	Index int
	Field string
	Err   error
}

func (err *MalformedRecordError) Error() string {
	switch {
	case err.Field == "":
		return fmt.Sprintf("record %d: %v", err.Index, err.Err)
	case err.Err == nil:
		return fmt.Sprintf(
			"record %d: missing required field `%s`",
			err.Index,
			err.Field,
		)
	default:
		return fmt.Sprintf(
			"record %d: field `%s`: %v",
			err.Index,
			err.Field,
			err.Err,
		)
	}
}

func (err *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedInput
}

func (err *MalformedRecordError) Unwrap() error { return err.Err }
