/*
Package errors defines the error kinds of the editions engine and the way
they travel to clients.

Each kind is registered once with Register and carries an ABCI response
code, so a client receiving a failed transaction can tell for example an
unauthorized mint (ErrUnauthorized) from a sold out series (ErrState).
Extensions reuse the kinds of this package and register their own only
when no existing kind fits.

Create errors at the point of failure with Wrap, Wrapf, New or Newf so that
a stack trace is recorded. Only the innermost wrap records one. Formatting
with %+v prints it, %v prints the message with the creation site and %s
only the message.

Validate methods collect the problems of every field with AppendField and
tests find them again with FieldErrors.
*/
package errors
