package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Field attributes err to a message field, for example Price of a series
// or Royalties.2.Party of its royalty table. Nested fields are joined by a
// dot and list elements are named by their index. The description is
// optional and formatted with args. Field returns nil for a nil err.
func Field(name string, err error, description string, args ...interface{}) error {
	if isNilErr(err) {
		return nil
	}
	if stackTrace(err) == nil {
		err = errors.WithStack(err)
	}
	if len(args) != 0 {
		description = fmt.Sprintf(description, args...)
	}
	return &fieldError{parent: err, field: name, desc: description}
}

// AppendField adds the error of a field to errs. It is how Validate
// methods collect all problems of a message at once:
//
//	var errs error
//	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
//	errs = errors.AppendField(errs, "SeriesID", validateSeriesID(m.SeriesID))
//	return errs
func AppendField(errs error, name string, err error) error {
	return Append(errs, Field(name, err, ""))
}

type fieldError struct {
	parent error
	field  string
	desc   string
}

func (e *fieldError) Error() string {
	if e.desc != "" {
		return fmt.Sprintf("field %q: %s: %s", e.field, e.desc, e.parent)
	}
	return fmt.Sprintf("field %q: %s", e.field, e.parent)
}

func (e *fieldError) Cause() error {
	return e.parent
}

func (e *fieldError) Field() string {
	return e.field
}

type fielder interface {
	Field() string
}

// FieldErrors returns the errors attributed to the named field, looking
// through wrapped and appended errors. The search stops at the outermost
// match of a branch.
func FieldErrors(err error, name string) []error {
	var found []error
	for !isNilErr(err) {
		if f, ok := err.(fielder); ok && f.Field() == name {
			return append(found, err)
		}
		if u, ok := err.(unpacker); ok {
			// The unpacked errors include any cause.
			for _, e := range u.Unpack() {
				found = append(found, FieldErrors(e, name)...)
			}
			return found
		}
		c, ok := err.(causer)
		if !ok {
			break
		}
		err = c.Cause()
	}
	return found
}
