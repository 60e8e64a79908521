// Package retry retries operations that fail with transient PostgreSQL or
// network errors, waiting an exponentially growing, jittered delay between
// attempts.
//
// Connectors wrap pool creation in an Executor so that a database that is
// still starting, or briefly out of connection slots, does not abort a load
// run. Rejected credentials and missing databases are never retried.
//
//	exec := retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), retry.NewExponentialBackoff(3))
//	err := exec.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
package retry
