// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration
for the dispatch server.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3319)
  - DatabaseURL: PostgreSQL connection string or sqlite file path
  - DatabaseType: "sqlite" (default) or "postgres"
  - DeviceKeySalt: Secret for device key HMAC (required)

# CLI Flags

	-p            Server port
	-d            Database URL / sqlite path
	-t            Database type
	--device-salt Device key salt

# Environment Variables

Flags fall back to environment variables, with a .env file loaded first
via godotenv if present:

	PORT            → -p
	DATABASE_URL    → -d
	DATABASE_TYPE   → -t
	DEVICE_KEY_SALT → --device-salt

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing:

  - DEVICE_KEY_SALT must be provided
  - DATABASE_URL must be provided when the type is postgres

For sqlite the URL defaults to "dispatch.db" in the working directory.

Note: this package configures the server process. Resolving deploy
invocations ("deploy prod -b" and friends) is a different job with
different rules and lives in the directive package.
*/
package cliparse
