// Package config holds the server's runtime settings.
//
// Settings are read from the environment (after main loads an optional
// .env file) with sane defaults, then command-line flags override them.
// Nothing here touches room semantics; room lifetimes come from clients
// at creation time, not from configuration.
package config
