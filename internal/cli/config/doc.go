// Package config provides the sessiongate CLI configuration.
//
// This package defines CLI-specific configuration:
//
//   - spec.go: Config struct (~/.sessiongate/cli.yaml)
//   - default.go: default values
//   - loader.go: layered loading through confloader
//   - verify.go: validation
//
// Sources are applied in order, later ones winning: defaults, the YAML
// file, SESSIONGATE_* environment variables, then command-line flags.
package config
