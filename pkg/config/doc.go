/*
Package config holds the explicit configuration object of the session synchronizer.

A Config is loaded once (defaults, then an optional YAML file, then SESSIONLOCK_*
environment variables), validated, and handed to exactly one synchronizer. Binding
the same Config twice fails, which replaces process-wide mutable settings with a
value that is owned by whoever constructed it.

Nested keys use a double underscore in environment variables:

	SESSIONLOCK_ADDRESS=redis:6379
	SESSIONLOCK_LOCK__ACQUIRE_TIMEOUT_SECONDS=2
*/
package config
