// Configuration files are YAML. Any ${VAR} reference is replaced with the
// environment variable of that name before parsing:
//
//	source:
//	  driver: pgx
//	  dsn: ${DATABASE_URL}
//	  query: SELECT * FROM orders
//	profiling:
//	  workers: 4
//	output:
//	  format: json
//
// The CLI layers flags and TABPROFILE_* environment variables over the file
// through Overlay.
package config
