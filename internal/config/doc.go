// Package config provides configuration management for the basecamp API.
//
// Configuration is read from a snapshot of the process environment using the
// env package, checked against per-domain constraints, and frozen into a
// single Config. Every non-optional field has a development default, so an empty
// environment yields a runnable configuration.
//
// Validation is exhaustive: one call reports every invalid key at once.
//
// Example usage:
//
//	cfg, err := config.Load(config.FromEnviron(os.Environ()))
//	if err != nil {
//	    fmt.Fprintln(os.Stderr, err)
//	    os.Exit(1)
//	}
//
//	fmt.Printf("HTTP server will listen on %s\n", cfg.ServerView().Addr())
//
// Consumers receive narrow views (Server, CORS, RateLimit, Auth, Database)
// rather than the whole Config, and never read the environment themselves.
package config
