package stage

import (
	"errors"
	"fmt"
)

// Failure records the stage a job failed in and the underlying cause.
type Failure struct {
	Stage Stage
	Cause error
}

// Fail wraps cause as a failure of the given stage.
func Fail(s Stage, cause error) *Failure {
	return &Failure{Stage: s, Cause: cause}
}

func (f *Failure) Error() string {
	if f.Cause == nil {
		return fmt.Sprintf("%s failed", f.Stage)
	}
	return fmt.Sprintf("%s failed: %v", f.Stage, f.Cause)
}

func (f *Failure) Unwrap() error { return f.Cause }

// StageOf returns the failed stage recorded in err, if any.
func StageOf(err error) (Stage, bool) {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Stage, true
	}
	return "", false
}
