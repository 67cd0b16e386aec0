package registry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultWaitInterval = 2 * time.Second

// errNotYetFound drives the polling loop; it never escapes WaitUntilFound.
var errNotYetFound = errors.New("registry: fingerprint not yet found")

// WaitUntilFound polls Lookup with exponential backoff until the
// fingerprint is registered or ctx ends. Lookup failures are terminal:
// the watch only re-queries on a clean not-found answer, it never
// retries a failed call.
func (c *Client) WaitUntilFound(ctx context.Context, fingerprint string) (*LookupResult, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.waitInterval
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = 0 // bounded by ctx only

	var result *LookupResult
	operation := func() error {
		lookup, err := c.Lookup(ctx, fingerprint)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !lookup.Found {
			c.logger.Debug("fingerprint not registered yet, polling",
				zap.String("fingerprint", fingerprint))
			return errNotYetFound
		}
		result = lookup
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, err
	}
	return result, nil
}
