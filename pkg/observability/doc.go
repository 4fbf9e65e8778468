/*
Package observability provides Prometheus instrumentation for the session synchronizer.

It counts operations by outcome, counts lock acquisitions that timed out, and
records how long callers waited for the claim key. A nil *Metrics is a valid
no-op so library users can leave instrumentation out.
*/
package observability
