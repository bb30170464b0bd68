// Package pkgconfig provides a small abstraction for reading configuration values.
//
// Values come from a YAML file loaded through Viper. Any key can be overridden
// by an environment variable: the key is upper-cased, dots become underscores
// and the CHEMVIS_ prefix is added (database.dsn -> CHEMVIS_DATABASE_DSN).
// An optional .env file in the working directory is loaded first.
package pkgconfig
