package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"wemscribe/internal/config"
)

// Requirement defines an external dependency the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements builds the dependency list for the given configuration. The
// conversion tools and the codebooks resource resolve to file paths; the
// inference binary may be a bare name looked up on PATH.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "ww2ogg",
			Command:     cfg.Tools.Ww2oggBinary,
			Description: "Required for decoding compressed audio",
		},
		{
			Name:        "revorb",
			Command:     cfg.Tools.RevorbBinary,
			Description: "Required for normalizing decoded audio",
		},
		{
			Name:        "codebooks",
			Command:     cfg.Tools.CodebooksPath,
			Description: "Shared codebook resource for ww2ogg",
		},
		{
			Name:        "whisper",
			Command:     cfg.Whisper.Binary,
			Description: "Required for speech recognition",
		},
		{
			Name:        "nvidia-smi",
			Command:     "nvidia-smi",
			Description: "GPU probe for device auto-selection",
			Optional:    true,
		},
	}
}

// Check evaluates the provided requirements and reports availability. A
// command containing a path separator is checked on disk; bare names go
// through PATH lookup.
func Check(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch {
		case cmd == "":
			status.Detail = "command not configured"
		case strings.ContainsRune(cmd, filepath.Separator):
			if _, err := os.Stat(cmd); err != nil {
				status.Detail = fmt.Sprintf("file %q not found", cmd)
			} else {
				status.Available = true
			}
		default:
			if _, err := exec.LookPath(cmd); err != nil {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
			} else {
				status.Available = true
			}
		}
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of unavailable non-optional dependencies.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}
