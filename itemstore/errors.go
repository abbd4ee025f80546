package itemstore

import "github.com/pkg/errors"

// ErrMissingKey is returned when a required key is absent: a path parameter,
// a required body field or the stored item itself.
var ErrMissingKey = errors.New("missing key")

// ErrNoValidFields is returned when an update carries nothing besides the
// primary key. It belongs to the ErrMissingKey class so errors.Is matches both.
var ErrNoValidFields = errors.Wrap(ErrMissingKey, "no valid fields provided for update")

// IsMissingKey reports whether err is in the missing key class.
func IsMissingKey(err error) bool {
	return errors.Is(err, ErrMissingKey)
}
