// Package goChmod restricts access to HTTP handlers with UNIX-style
// owner/group/other permission bits.
//
// A [Manager] is bound to the host application (anything with a
// Handle(pattern, http.Handler) method, such as *http.ServeMux) and decides,
// for a request identity and a [Spec], whether access is granted. Specs are
// written the way chmod modes are:
//
//	110 -> the owner and members of the group may access
//	001 -> everyone may access
//
// Evaluation order is owner bit, then group bit, then other bit; the first
// satisfied bit wins and is reported as the decision [Reason].
//
// The HTTP decorator lives in the middleware sub-package; this package only
// decides.
//
// # Architecture boundaries
//
// goChmod is the public surface. It exposes [Manager], [Builder], [Config] and
// value types. Verdict caching and audit dispatch live under internal/.
//
// # What this package must NOT do
//
//   - Authenticate requests or manage sessions; identity comes from the
//     request context (see [WithIdentity] and [WithUser]).
//   - Store groups; group membership comes from the request identity or a
//     caller-supplied [GroupResolver].
//   - Write HTTP responses.
package goChmod
