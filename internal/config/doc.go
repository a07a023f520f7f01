// Package config loads driverbdd run configuration.
//
// A configuration file is YAML decoded strictly, so misspelled keys are
// errors, and is then checked against an embedded CUE schema:
//
//	features:
//	  - features/connection
//	tags: "@smoke"
//	format: pretty
//	thread_pool_size: 32
//	strict: true
//	stop_on_failure: false
//	driver:
//	  address: ":memory:"
//
// Omitted keys keep the values from Default. Relative feature paths are
// resolved against the directory holding the file.
package config
