package viz

import (
	"errors"
	"fmt"

	"github.com/banshee-data/pointviz/internal/monitoring"
)

var (
	// ErrDuplicateID is returned when an add operation that does not allow
	// overwriting targets an ID that is already live.
	ErrDuplicateID = errors.New("id already exists")
	// ErrNotFound is returned when an update or remove targets an absent ID.
	ErrNotFound = errors.New("id not found")
	// ErrInvalidInput is returned for malformed buffers or arguments. No
	// scene state is touched when it is returned.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTopology is returned when an update does not match how the live
	// object was built.
	ErrTopology = errors.New("incompatible geometry")
)

func duplicate(op, kind, id string) error {
	monitoring.Warnf("[%s] A %s with id <%s> already exists! Please choose a different id and retry.", op, kind, id)
	return fmt.Errorf("%s %q: %w", op, id, ErrDuplicateID)
}

func invalid(op, id string, err error) error {
	monitoring.Errorf("[%s] %s: %v", op, id, err)
	return fmt.Errorf("%s %q: %w: %w", op, id, ErrInvalidInput, err)
}

func invalidf(op, id, format string, args ...interface{}) error {
	return invalid(op, id, fmt.Errorf(format, args...))
}

func notFound(op, kind, id string) error {
	monitoring.Errorf("[%s] No %s with id <%s> found!", op, kind, id)
	return fmt.Errorf("%s %q: %w", op, id, ErrNotFound)
}

func topology(op, id, format string, args ...interface{}) error {
	monitoring.Errorf("[%s] %s: %s", op, id, fmt.Sprintf(format, args...))
	return fmt.Errorf("%s %q: %w: %s", op, id, ErrTopology, fmt.Sprintf(format, args...))
}

func renderFailed(op, id string, err error) error {
	return fmt.Errorf("%s %q: renderer: %w", op, id, err)
}
