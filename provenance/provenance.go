// Package provenance builds the fixed deployment-metadata tags the
// orchestrator appends after the tag merge: commit id, actor, timestamp,
// workflow, organization, and repository. Values come from a caller-supplied
// lookup (the command layer passes the process environment); the core never
// reads ambient state itself. Absent fields default to the "unknown"
// sentinel rather than failing, since provenance is descriptive, not
// load-bearing.
package provenance

import (
	"strings"
	"time"

	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/merge"
)

// Unknown is the sentinel recorded for any metadata field the environment
// does not provide.
const Unknown = "unknown"

// Environment variable names populated by GitHub Actions runners.
const (
	envCommit       = "GITHUB_SHA"
	envActor        = "GITHUB_ACTOR"
	envWorkflow     = "GITHUB_WORKFLOW"
	envOrganization = "GITHUB_REPOSITORY_OWNER"
	envRepository   = "GITHUB_REPOSITORY"
)

// Tag keys for the appended provenance entries.
const (
	KeyCommit       = "CommitId"
	KeyActor        = "DeployedBy"
	KeyTimestamp    = "DeployedAt"
	KeyWorkflow     = "Workflow"
	KeyOrganization = "Organization"
	KeyRepository   = "Repository"
)

// Metadata holds the resolved provenance fields.
type Metadata struct {
	Commit       string
	Actor        string
	Workflow     string
	Organization string
	Repository   string
	Timestamp    time.Time
}

// Lookup resolves one environment variable, reporting presence.
type Lookup func(name string) (string, bool)

// FromLookup resolves all provenance fields through lookup, defaulting each
// absent or blank value to Unknown. The timestamp is taken from now.
func FromLookup(lookup Lookup, now time.Time) Metadata {
	get := func(name string) string {
		if lookup == nil {
			return Unknown
		}
		v, ok := lookup(name)
		if !ok || strings.TrimSpace(v) == "" {
			return Unknown
		}
		return v
	}

	return Metadata{
		Commit:       get(envCommit),
		Actor:        get(envActor),
		Workflow:     get(envWorkflow),
		Organization: get(envOrganization),
		Repository:   get(envRepository),
		Timestamp:    now,
	}
}

// Records renders the six fixed tag entries in their stable order.
func (m Metadata) Records() []merge.Record {
	return []merge.Record{
		{Name: KeyCommit, Value: m.Commit},
		{Name: KeyActor, Value: m.Actor},
		{Name: KeyTimestamp, Value: m.Timestamp.UTC().Format(time.RFC3339)},
		{Name: KeyWorkflow, Value: m.Workflow},
		{Name: KeyOrganization, Value: m.Organization},
		{Name: KeyRepository, Value: m.Repository},
	}
}
