// Package config provides configuration management for dnssift.
//
// The package uses a Provider interface to abstract configuration loading,
// with the primary implementation being filesystem-based configuration via
// YAML files.
//
// # Configuration Structure
//
// Configuration is structured as follows:
//
//	probe:
//	  domain: google.com   # domain queried against each candidate server
//	  timeout: 1s          # combined per-probe time budget
//	  workers: 10          # probes allowed in flight at once
//
// # Basic Usage
//
// Load configuration using the default path (~/.dnssift/config.yaml):
//
//	cfg, err := config.New().Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Load configuration from a specific path:
//
//	provider := config.NewWithPath(filesys.OS(), "/etc/dnssift/config.yaml")
//	cfg, err := provider.Load()
//
// # Defaults and Validation
//
// If no configuration file exists, or a field is omitted, the following
// defaults apply: domain google.com, timeout 1s, workers 10. Loaded
// configuration is validated: the domain must be non-empty, the timeout at
// least 100ms, and the worker count at least 1.
//
// Command-line flags override file values; that merge happens in the CLI,
// not here, so the package stays usable for embedding.
//
// # Error Handling
//
// The package defines two sentinel errors:
//   - ErrInvalidConfig: configuration validation failed
//   - ErrNoConfig: configuration file not found (Load returns defaults)
package config
