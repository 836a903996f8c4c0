// Package utils provides decorators shared by every application built on
// this framework: panic recovery, transaction logging, all-or-nothing
// savepoints and action tagging.
package utils
