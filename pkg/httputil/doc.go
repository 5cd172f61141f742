// Package httputil provides the HTTP plumbing used to download module
// templates.
//
//   - [Get]: a single GET that classifies failures (retryable, not found,
//     permanent) and reports to the observability HTTP hooks
//   - [Retry]: exponential backoff for [RetryableError]s, stretched when
//     the server sends Retry-After
//
// Typical use:
//
//	err := httputil.Retry(ctx, 3, time.Second, func() error {
//	    body, err = httputil.Get(ctx, client, url)
//	    return err
//	})
package httputil
