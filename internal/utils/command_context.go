package utils

import (
	"context"
	"strings"
)

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	repositoryPathContextKeyConstant        = commandContextKey("repositoryPath")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return accessor.withValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return accessor.value(executionContext, configurationFilePathContextKeyConstant)
}

// WithRepositoryPath attaches the repository the command operates on.
func (accessor CommandContextAccessor) WithRepositoryPath(parentContext context.Context, repositoryPath string) context.Context {
	return accessor.withValue(parentContext, repositoryPathContextKeyConstant, strings.TrimSpace(repositoryPath))
}

// RepositoryPath extracts the repository path. Empty paths are reported as unavailable.
func (accessor CommandContextAccessor) RepositoryPath(executionContext context.Context) (string, bool) {
	repositoryPath, available := accessor.value(executionContext, repositoryPathContextKeyConstant)
	if !available || len(repositoryPath) == 0 {
		return "", false
	}
	return repositoryPath, true
}

func (accessor CommandContextAccessor) withValue(parentContext context.Context, key commandContextKey, value string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, key, value)
}

func (accessor CommandContextAccessor) value(executionContext context.Context, key commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	storedValue, available := executionContext.Value(key).(string)
	if !available {
		return "", false
	}
	return storedValue, true
}
