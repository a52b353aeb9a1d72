// Package deps checks that the external programs vfrchap runs are installed.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"vfrchap/internal/config"
)

// Requirement names an external program and why it is needed.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a requirement. Path is the resolved
// executable when Available.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

// CheckBinaries resolves every requirement on PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

// Requirements lists the programs a run needs. mkvmerge is only mandatory
// when audio is cut.
func Requirements(cfg *config.Config, cutsAudio bool) []Requirement {
	binary := "mkvmerge"
	if cfg != nil {
		binary = cfg.MkvmergeBinary()
	}
	return []Requirement{{
		Name:        "mkvmerge",
		Command:     binary,
		Description: "Required for cutting audio (--input)",
		Optional:    !cutsAudio,
	}}
}

// Missing returns the mandatory requirements that are unavailable.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}
