// Package app contains the core application logic. It wires configuration
// loading, blueprint construction, rendering and the HTTP surface together,
// decoupled from any specific entrypoint like a CLI or server.
package app
