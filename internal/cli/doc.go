// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. It
// translates flags and environment variables into the application's
// configuration and drives the app package.
package cli
