// Package config loads application configuration from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11:
//
//   - LoadEnv reads one or more .env files into the process environment.
//   - Load parses the environment into a struct using `env` tags and caches
//     the result per type.
//   - ForceReload and ResetCache bypass or clear the cache, which is handy in
//     tests.
//
// A config struct whose pointer implements Validator is validated after
// parsing. Invalid values are never cached.
//
//	type ServerConfig struct {
//	    Addr    string `env:"ADAPTIVE_ADDR" envDefault:":8080"`
//	    Profile string `env:"ADAPTIVE_PROFILE"`
//	}
//
//	var cfg ServerConfig
//	if err := config.Load(&cfg); err != nil {
//	    log.Fatal(err)
//	}
//
// Errors can be matched with errors.Is against ErrParsingConfig,
// ErrInvalidConfig, ErrLoadingEnvFile and ErrNilPointer.
package config
