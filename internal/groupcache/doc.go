// Package groupcache caches "user is member of group" verdicts so that the
// group resolver is not consulted on every request.
//
// # Tiers
//
//   - [Local]: per-process expirable LRU.
//   - [Store]: Redis string keys shared by every process behind the same Redis.
//
// Redis keys have the form:
//
//	<prefix>:granted:{"user":"alice","group":"staff"}
//
// with value "1" (member) or "0" (not a member).
//
// # What this package must NOT do
//
//   - Resolve groups itself; callers supply verdicts.
//   - Import goChmod.
package groupcache
