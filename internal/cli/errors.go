package cli

import (
	"errors"
	"fmt"

	genspec "github.com/mark3labs/csdoc/internal/spec"
)

var ErrUsage = errors.New("cli usage error")

type usageError struct {
	msg   string
	cause error
}

func newUsageError(msg string) error {
	return usageError{msg: msg}
}

func (e usageError) Error() string {
	return e.msg
}

func (e usageError) Is(target error) bool {
	return target == ErrUsage
}

func (e usageError) Unwrap() error { return e.cause }

// fromSpecError maps structured build/load errors into friendly messages,
// keeping the cause reachable through errors.As.
func fromSpecError(prefix string, err error) error {
	var se *genspec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := fmt.Sprintf("%s: %s", prefix, err.Error())
	if se.Key != "" {
		msg = fmt.Sprintf("%s\nKey: %s/%s", msg, se.Registry, se.Key)
	}
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	msg = fmt.Sprintf("%s\nCode: %s", msg, se.Code)
	return usageError{msg: msg, cause: err}
}
