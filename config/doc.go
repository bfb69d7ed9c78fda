// Package config loads rxkit service configuration.
//
// It uses Viper to read a config.yml (searched in the usual cmd/ and config/
// locations) and godotenv to load an optional .env file. Environment
// variables carrying the configured prefix override file values, with
// underscores mapped to nesting:
//
//	RX_SCHEDULER_NAME=main   ->  scheduler.name
//	RX_SERVER_ADDR=:9090     ->  server.addr
//
// # Usage
//
//	var cfg Config
//	err := config.LoadConfig("rxdemo", &cfg, config.WithEnvPrefix("RX"))
package config
