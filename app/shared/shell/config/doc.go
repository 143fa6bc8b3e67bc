// Package config loads the service configuration and builds the infrastructure it describes:
// the database connection behind the SQL engine, the logger and the OpenTelemetry providers.
//
// Configuration comes from spf13/viper: defaults, an optional circulation.yaml,
// environment variables prefixed with CIRCULATION_ and command line flags bound by the CLI.
//
// This package is part of the shell (infrastructure) layer.
package config
