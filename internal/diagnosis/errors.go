package diagnosis

import (
	"errors"
	"fmt"
)

// ErrDataSourceUnavailable is matched by errors.Is when the issue catalog cannot be read.
var ErrDataSourceUnavailable = errors.New("data source unavailable")

// DataSourceError reports a failed issue catalog fetch. It aborts the diagnosis.
type DataSourceError struct {
	Source string
	Cause  error
}

func (e *DataSourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", ErrDataSourceUnavailable, e.Source, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrDataSourceUnavailable, e.Source)
}

func (e *DataSourceError) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrDataSourceUnavailable) hold for every DataSourceError.
func (e *DataSourceError) Is(target error) bool {
	return target == ErrDataSourceUnavailable
}
