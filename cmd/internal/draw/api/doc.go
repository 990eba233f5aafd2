// Package drawapi is the thin HTTP request layer over the draw service:
// JSON decoding, the operator-password guard on admin routes, and the
// mapping from core errors to wire status codes. No draw semantics live
// here.
package drawapi
