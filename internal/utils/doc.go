// Package utils houses the CLI plumbing shared by every command: the Viper
// backed ConfigurationLoader (with dotenv support), the zap LoggerFactory,
// and the command context accessor.
package utils
