package shared

import (
	"errors"
	"fmt"
	"strings"
)

const (
	emptyValueMessageConstant           = "value must not be empty"
	controlCharacterMessageConstant     = "value must not contain control characters"
	optionLikeValueMessageConstant      = "value must not start with '-'"
	whitespaceValueMessageConstant      = "value must not contain whitespace"
	invalidValueErrorTemplateConstant   = "invalid %s %q: %w"
	repositoryPathLabelConstant         = "repository path"
	referenceNameLabelConstant          = "reference"
	remoteNameLabelConstant             = "remote"
	optionPrefixConstant                = "-"
	referenceForbiddenSequenceConstant  = ".."
	referenceRangeSyntaxMessageConstant = "value must not contain '..'"
)

var (
	// ErrEmptyValue indicates a required value was blank.
	ErrEmptyValue = errors.New(emptyValueMessageConstant)
	// ErrControlCharacters indicates a value contained newlines or other control characters.
	ErrControlCharacters = errors.New(controlCharacterMessageConstant)
	// ErrOptionLikeValue indicates a value would be interpreted by git as a command-line option.
	ErrOptionLikeValue = errors.New(optionLikeValueMessageConstant)
	// ErrWhitespaceValue indicates a value contained inner whitespace.
	ErrWhitespaceValue = errors.New(whitespaceValueMessageConstant)
	// ErrRangeSyntax indicates a reference used revision range syntax.
	ErrRangeSyntax = errors.New(referenceRangeSyntaxMessageConstant)
)

// RepositoryPath is a trimmed, single-line path to a repository working tree.
type RepositoryPath string

// NewRepositoryPath validates and normalizes a repository path.
func NewRepositoryPath(raw string) (RepositoryPath, error) {
	trimmed := strings.TrimSpace(raw)
	if validationError := requireSingleLine(trimmed); validationError != nil {
		return "", fmt.Errorf(invalidValueErrorTemplateConstant, repositoryPathLabelConstant, raw, validationError)
	}
	return RepositoryPath(trimmed), nil
}

// String returns the path.
func (path RepositoryPath) String() string {
	return string(path)
}

// ReferenceName is a revision a merge can target, such as a branch or a remote-tracking branch.
type ReferenceName string

// NewReferenceName validates a user supplied merge target so it can be passed to git as a positional argument.
func NewReferenceName(raw string) (ReferenceName, error) {
	trimmed := strings.TrimSpace(raw)
	validationError := requireToken(trimmed)
	if validationError == nil && strings.Contains(trimmed, referenceForbiddenSequenceConstant) {
		validationError = ErrRangeSyntax
	}
	if validationError != nil {
		return "", fmt.Errorf(invalidValueErrorTemplateConstant, referenceNameLabelConstant, raw, validationError)
	}
	return ReferenceName(trimmed), nil
}

// String returns the reference.
func (reference ReferenceName) String() string {
	return string(reference)
}

// RemoteName identifies a configured git remote.
type RemoteName string

// NewRemoteName validates a remote name, falling back to origin when blank.
func NewRemoteName(raw string) (RemoteName, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) == 0 {
		return RemoteName(OriginRemoteNameConstant), nil
	}
	if validationError := requireToken(trimmed); validationError != nil {
		return "", fmt.Errorf(invalidValueErrorTemplateConstant, remoteNameLabelConstant, raw, validationError)
	}
	return RemoteName(trimmed), nil
}

// String returns the remote name.
func (remote RemoteName) String() string {
	return string(remote)
}

func requireSingleLine(value string) error {
	if len(value) == 0 {
		return ErrEmptyValue
	}
	for _, character := range value {
		if character < ' ' || character == 0x7f {
			return ErrControlCharacters
		}
	}
	return nil
}

func requireToken(value string) error {
	if validationError := requireSingleLine(value); validationError != nil {
		return validationError
	}
	if strings.HasPrefix(value, optionPrefixConstant) {
		return ErrOptionLikeValue
	}
	if strings.ContainsAny(value, " \t") {
		return ErrWhitespaceValue
	}
	return nil
}
