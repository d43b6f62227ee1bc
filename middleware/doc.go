// Package middleware exposes net/http adapters that enforce goChmod permission
// specs on handlers.
//
// # Guards
//
//   - [Require]: enforces a prepared goChmod.Spec.
//   - [Chmod]: builds the Spec from a mode such as 110 plus owner and group.
//   - [Chown]: ownership only: owner or group members pass, everyone else is rejected.
//   - [Handle]: registers a guarded handler on the Manager's bound application.
//
// Each guard reads the identity placed on the request context, calls
// Manager.Authorize, and either forwards the request with the Decision attached
// or rejects it.
//
// # Identity
//
// [Authenticate] installs the identity ahead of the guards. [BearerJWT] reads
// signed identity tokens and [TrustedHeaders] trusts headers set by an upstream
// proxy.
//
// # What this package must NOT do
//
//   - Evaluate permission bits itself (delegates to Manager.Authorize).
//   - Access Redis or the group resolver directly.
package middleware
