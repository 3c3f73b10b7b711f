// Package httputil provides shared HTTP response/request utilities for handlers.
//
// JSON endpoints use these helpers instead of writing raw http.ResponseWriter
// calls, so error envelopes and logging stay consistent.
package httputil
