// Package domain defines the core types for the Sherpa waitlist.
//
// Types in this package are pure value objects with no behavior beyond
// validation, no network dependencies, and no HTTP concerns. They are the
// shared language between the form controller, the webhook dispatcher and
// the landing handlers.
//
// Rules for this package:
//   - No imports from other internal/ packages
//   - No http.Request, no context.Context in struct fields
//   - JSON tags are allowed (they're metadata, not behavior)
//   - Validation methods are allowed (they're pure functions on the type)
//   - Constants and enums belong here
package domain
