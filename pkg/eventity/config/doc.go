/*
Package config loads bus configuration from YAML or JSON files.

# Overview

config defines the declarative tuning surface of a bus: its name, queue
capacity, observability toggles, and fault journal backend. Configuration is
deliberately small; the bus is an in-process library, so anything beyond
tuning belongs in code.

# File Loading

Load configuration from a file, auto-detected by extension, or from raw
bytes:

	cfg, err := config.FromFile("bus.yaml")
	if err != nil {
	    log.Fatal(err)
	}

	cfg, err = config.FromYAML(yamlBytes)
	cfg, err = config.FromJSON(jsonBytes)

A YAML file looks like:

	name: game-events
	queue_capacity: 1024
	metrics: true
	tracing: false
	fault_log:
	  backend: sqlite
	  path: faults.db

# Validation

Validate checks the loaded values; loading does not validate implicitly so
callers can layer defaults before checking:

	cfg := config.Default()
	cfg.Metrics = true
	if err := cfg.Validate(); err != nil {
	    log.Fatal(err)
	}

Translate a validated Config into bus options with eventity.FromConfig.
*/
package config
