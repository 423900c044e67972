// Package observability records publish and index activity as structured
// JSON Lines events and derives metrics on demand from that log.
package observability
