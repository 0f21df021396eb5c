// Package output renders sessiongate command results.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: key/value and list tables built from struct tags
//   - json.go, yaml.go: machine-readable output for scripting
//   - spinner.go: activity indicator while a form is submitting
//   - meter.go: session lifetime gauge for the status command
//
// Struct fields are labelled by their json tag. A `table:"-"` tag hides a
// field from tables and `table:"wide"` shows it only with --wide.
package output
