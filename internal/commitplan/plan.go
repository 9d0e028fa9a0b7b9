package commitplan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/aigit/internal/commitmsg"
)

const (
	planInvariantViolatedMessageConstant = "commit plan does not cover the staged files exactly once"
	missingFileErrorTemplateConstant     = "%w: %s is not assigned to any group"
	duplicateFileErrorTemplateConstant   = "%w: %s is assigned more than once"
	unknownFileErrorTemplateConstant     = "%w: %s is not staged"
	emptyGroupErrorTemplateConstant      = "%w: group %d has no files"
	unusableMessageErrorTemplateConstant = "%w: group %d has an unusable message"
)

// ErrPlanInvariantViolated indicates a normalized plan that does not partition the staged files.
var ErrPlanInvariantViolated = errors.New(planInvariantViolatedMessageConstant)

// Group is one planned commit.
type Group struct {
	Message string   `json:"message"`
	Files   []string `json:"files"`
}

// Plan is an ordered list of commit groups.
type Plan struct {
	Groups []Group
	// Fallback is true when the plan is the single synthetic group built from every staged file.
	Fallback bool
}

// NormalizePlan repairs a proposed plan against the staged files. Each group keeps the staged files that no earlier
// group claimed. Groups left without files or with an unusable message are then dropped, and staged files outside
// every surviving group join the last one. An empty result means the proposal was unusable.
func NormalizePlan(proposed []Group, stagedFiles []string) []Group {
	stagedSet := make(map[string]struct{}, len(stagedFiles))
	for _, stagedFile := range stagedFiles {
		stagedSet[stagedFile] = struct{}{}
	}

	claimed := make(map[string]struct{}, len(stagedFiles))
	deduplicated := make([]Group, 0, len(proposed))
	for _, proposedGroup := range proposed {
		files := make([]string, 0, len(proposedGroup.Files))
		for _, proposedFile := range proposedGroup.Files {
			candidate := strings.TrimSpace(proposedFile)
			if _, isStaged := stagedSet[candidate]; !isStaged {
				continue
			}
			if _, isClaimed := claimed[candidate]; isClaimed {
				continue
			}
			claimed[candidate] = struct{}{}
			files = append(files, candidate)
		}
		deduplicated = append(deduplicated, Group{Message: proposedGroup.Message, Files: files})
	}

	assigned := make(map[string]struct{}, len(stagedFiles))
	normalized := make([]Group, 0, len(deduplicated))
	for _, group := range deduplicated {
		message := commitmsg.Normalize(group.Message)
		if len(group.Files) == 0 || len(message) == 0 {
			continue
		}
		for _, file := range group.Files {
			assigned[file] = struct{}{}
		}
		normalized = append(normalized, Group{Message: message, Files: group.Files})
	}

	if len(normalized) == 0 {
		return nil
	}

	lastGroup := &normalized[len(normalized)-1]
	for _, stagedFile := range stagedFiles {
		if _, isAssigned := assigned[stagedFile]; isAssigned {
			continue
		}
		assigned[stagedFile] = struct{}{}
		lastGroup.Files = append(lastGroup.Files, stagedFile)
	}
	return normalized
}

// VerifyPlan checks that every staged file appears in exactly one group and that every group is committable.
func VerifyPlan(groups []Group, stagedFiles []string) error {
	stagedSet := make(map[string]struct{}, len(stagedFiles))
	for _, stagedFile := range stagedFiles {
		stagedSet[stagedFile] = struct{}{}
	}

	seen := make(map[string]struct{}, len(stagedFiles))
	for groupIndex, group := range groups {
		if len(group.Files) == 0 {
			return fmt.Errorf(emptyGroupErrorTemplateConstant, ErrPlanInvariantViolated, groupIndex+1)
		}
		if !commitmsg.IsUsable(group.Message) {
			return fmt.Errorf(unusableMessageErrorTemplateConstant, ErrPlanInvariantViolated, groupIndex+1)
		}
		for _, file := range group.Files {
			if _, isStaged := stagedSet[file]; !isStaged {
				return fmt.Errorf(unknownFileErrorTemplateConstant, ErrPlanInvariantViolated, file)
			}
			if _, duplicate := seen[file]; duplicate {
				return fmt.Errorf(duplicateFileErrorTemplateConstant, ErrPlanInvariantViolated, file)
			}
			seen[file] = struct{}{}
		}
	}

	for _, stagedFile := range stagedFiles {
		if _, assigned := seen[stagedFile]; !assigned {
			return fmt.Errorf(missingFileErrorTemplateConstant, ErrPlanInvariantViolated, stagedFile)
		}
	}
	return nil
}

// Files returns every file of the plan in group order.
func (plan Plan) Files() []string {
	files := make([]string, 0)
	for _, group := range plan.Groups {
		files = append(files, group.Files...)
	}
	return files
}
