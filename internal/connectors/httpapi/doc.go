// Package httpapi is the HTTP plumbing shared by the upstream connectors.
//
// A Client issues GET requests against one upstream source, throttled by a
// token bucket and retried with exponential backoff. Responses are classified
// into three outcomes:
//
//   - 404, 410 and empty 2xx bodies become domain.ErrNotFound and are not retried
//   - transport errors, timeouts, 429 and 5xx are retried, then reported as
//     *domain.UpstreamError
//   - any other status and malformed JSON are reported as
//     *domain.UpstreamError without retrying
package httpapi
