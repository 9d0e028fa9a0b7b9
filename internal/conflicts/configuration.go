package conflicts

// Configuration captures the `tools.conflicts` configuration section.
type Configuration struct {
	ContextLines int `mapstructure:"context_lines"`
}

// DefaultConfiguration provides baseline conflict resolution settings.
func DefaultConfiguration() Configuration {
	return Configuration{ContextLines: DefaultContextLinesConstant}
}

// DefaultConfigurationValues returns the conflict defaults keyed for the configuration loader.
func DefaultConfigurationValues(prefix string) map[string]any {
	return map[string]any{
		prefix + ".context_lines": DefaultContextLinesConstant,
	}
}

// ResolverOptions converts the configuration into resolver options.
func (configuration Configuration) ResolverOptions() ResolverOptions {
	return ResolverOptions{ContextLines: configuration.ContextLines}
}
