// Package config loads the buy watcher configuration.
//
// Configuration is a YAML file with ${VAR} environment expansion. Secrets
// (partner ID, webhook URL, database password) are usually supplied through
// the environment or a .env file next to the config file or in the working
// directory.
package config
