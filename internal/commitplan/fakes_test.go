package commitplan_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/temirov/aigit/internal/completion"
)

type recordedCommit struct {
	message string
	files   []string
}

// fakeRepository models a working tree whose changed files can be staged and committed.
type fakeRepository struct {
	changed       map[string]bool
	staged        []string
	commits       []recordedCommit
	stageCalls    [][]string
	stageAllCalls int
	unstageCalls  int
	commitError   error
	failingCommit int
	commitCalls   int
	diffStat      string
	patch         string
}

func newFakeRepository(stagedFiles ...string) *fakeRepository {
	repository := &fakeRepository{changed: map[string]bool{}}
	for _, stagedFile := range stagedFiles {
		repository.changed[stagedFile] = true
		repository.staged = append(repository.staged, stagedFile)
	}
	return repository
}

func (repository *fakeRepository) UnstageAll(context.Context, string) error {
	repository.unstageCalls++
	repository.staged = nil
	return nil
}

func (repository *fakeRepository) StageFiles(_ context.Context, _ string, paths []string) error {
	repository.stageCalls = append(repository.stageCalls, append([]string{}, paths...))
	for _, path := range paths {
		if !repository.changed[path] || repository.isStaged(path) {
			continue
		}
		repository.staged = append(repository.staged, path)
	}
	return nil
}

func (repository *fakeRepository) StageAll(context.Context, string) error {
	repository.stageAllCalls++
	repository.staged = nil
	for path := range repository.changed {
		repository.staged = append(repository.staged, path)
	}
	sort.Strings(repository.staged)
	return nil
}

func (repository *fakeRepository) ListStagedFiles(context.Context, string) ([]string, error) {
	return append([]string{}, repository.staged...), nil
}

func (repository *fakeRepository) Commit(_ context.Context, _ string, message string) error {
	repository.commitCalls++
	if repository.commitError != nil && (repository.failingCommit == 0 || repository.failingCommit == repository.commitCalls) {
		return repository.commitError
	}
	if len(repository.staged) == 0 {
		return errors.New("nothing to commit")
	}
	repository.commits = append(repository.commits, recordedCommit{message: message, files: append([]string{}, repository.staged...)})
	for _, path := range repository.staged {
		delete(repository.changed, path)
	}
	repository.staged = nil
	return nil
}

func (repository *fakeRepository) HeadCommitHash(context.Context, string) (string, error) {
	return fmt.Sprintf("commit%d%s", len(repository.commits), strings.Repeat("0", 33)), nil
}

func (repository *fakeRepository) StagedDiffStat(context.Context, string) (string, error) {
	return repository.diffStat, nil
}

func (repository *fakeRepository) StagedPatch(context.Context, string) (string, error) {
	return repository.patch, nil
}

func (repository *fakeRepository) isStaged(path string) bool {
	for _, stagedPath := range repository.staged {
		if stagedPath == path {
			return true
		}
	}
	return false
}

// schemaGateway answers structured requests by schema name.
type schemaGateway struct {
	objects         map[string]json.RawMessage
	errors          map[string]error
	plainText       string
	structuredCalls map[string]int
}

func newSchemaGateway() *schemaGateway {
	return &schemaGateway{objects: map[string]json.RawMessage{}, errors: map[string]error{}, structuredCalls: map[string]int{}}
}

func (gateway *schemaGateway) Complete(context.Context, completion.Request) (string, error) {
	if len(gateway.plainText) == 0 {
		return "", errors.New("no plain text configured")
	}
	return gateway.plainText, nil
}

func (gateway *schemaGateway) CompleteStructured(_ context.Context, _ completion.Request, schema completion.Schema) (json.RawMessage, error) {
	gateway.structuredCalls[schema.Name]++
	if configuredError, present := gateway.errors[schema.Name]; present {
		return nil, configuredError
	}
	object, present := gateway.objects[schema.Name]
	if !present {
		return nil, completion.ErrNoStructuredOutput
	}
	if schema.Validate != nil {
		if validationError := schema.Validate(object); validationError != nil {
			return nil, errors.Join(completion.ErrNoStructuredOutput, validationError)
		}
	}
	return object, nil
}
