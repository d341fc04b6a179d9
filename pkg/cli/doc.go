// Package cli implements the restkit command line, built with cobra: serve,
// routes, validate, init, openapi, schema and version.
package cli
