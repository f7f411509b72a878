// Package config provides configuration management for the library sync service.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file, with defaults declared directly on the config structs.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: local catalog connection details (sqlite file or MySQL)
//   - Remote: remote library service endpoint and credentials
//   - Storage: S3/MinIO credentials and bucket for library snapshots
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
