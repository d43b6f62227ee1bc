// Package permission provides the three-bit owner/group/other [Mode] used by
// goChmod access checks, plus parsers for the decimal-digit ("110") and
// symbolic ("ug-") notations.
//
// # Bit layout
//
// The owner bit is the most significant of the three bits, mirroring the
// left-to-right order of the written mode:
//
//	110 -> owner and group may access, other may not
//	001 -> everyone may access
//
// # Architecture boundaries
//
// This package is a pure in-memory value type with no I/O.
//
// # What this package must NOT do
//
//   - Access Redis, the network, or request state.
//   - Import goChmod, jwt, or middleware.
package permission
