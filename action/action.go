// Package action orchestrates the parameter pipeline: load the root
// descriptor and documents, merge defaults with environment overrides,
// render the wire records, resolve the stack name, and (in build mode)
// attach a correlation id. It is glue over the other packages; every
// decision with logical content lives in them.
//
// A run either produces a fully valid Outputs or fails with the first error
// encountered. There is no partial output and no retry; the one non-fatal
// condition, an absent environment document, is handled inside the loader.
package action

import (
	"context"
	"fmt"

	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/document"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/errors"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/fsys"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/gitcli"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/merge"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/naming"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/provenance"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/token"
)

// maxTagRecords caps the final tag list, provenance entries included.
const maxTagRecords = 50

// maxTagValueLen caps every emitted tag value.
const maxTagValueLen = 256

// Inputs configures one pipeline run. Everything ambient (filesystem,
// branch lookup, clock, environment) is injectable; zero values select the
// production implementations.
type Inputs struct {
	// RootPath is the directory holding cloudformation.json, params/, and
	// tags/.
	RootPath string

	// BuildMode selects branch-derived naming plus a correlation id.
	BuildMode bool

	// Environment is the target environment tag. Required in deployment
	// mode; in build mode it still selects which optional environment
	// documents load.
	Environment string

	// FS overrides the filesystem. Defaults to the OS filesystem rooted at
	// RootPath.
	FS *fsys.FS

	// Branches overrides the branch resolver. Defaults to the git CLI
	// running in RootPath.
	Branches naming.BranchResolver

	// Metadata is the provenance appended to the tag list.
	Metadata provenance.Metadata

	// CorrelationIDLength overrides the generated id length. Zero means
	// token.DefaultLength.
	CorrelationIDLength int
}

// Outputs is the assembled result handed to the output boundary.
type Outputs struct {
	// StackName is the resolved deployment-target name, correlation id
	// included in build mode.
	StackName string

	// Template is the descriptor's template reference, passed through
	// untouched.
	Template string

	// CorrelationID is the build-mode token, empty in deployment mode.
	CorrelationID string

	// Parameters are the merged parameter records in sorted key order.
	Parameters []merge.Record

	// Tags are the merged tag records with provenance entries appended.
	Tags []merge.Record
}

// Run executes the pipeline.
func Run(ctx context.Context, in Inputs) (*Outputs, error) {
	if err := validateInputs(in); err != nil {
		return nil, err
	}

	fs := in.FS
	if fs == nil {
		fs = fsys.NewOS(in.RootPath)
	}
	loader := document.NewLoader(fs)

	desc, err := loader.RootDescriptor()
	if err != nil {
		return nil, err
	}

	parameters, err := mergeDocuments(loader.DefaultParameters, loader.EnvironmentParameters,
		in.Environment, merge.Parameter)
	if err != nil {
		return nil, err
	}

	tags, err := mergeDocuments(loader.DefaultTags, loader.EnvironmentTags,
		in.Environment, merge.Tag)
	if err != nil {
		return nil, err
	}
	tags, err = appendProvenance(tags, in.Metadata)
	if err != nil {
		return nil, err
	}

	branches := in.Branches
	if branches == nil {
		branches = gitcli.NewResolver(gitcli.WithWorkdir(in.RootPath))
	}
	resolver := naming.NewResolver(branches)

	name, err := resolver.Resolve(ctx, naming.Input{
		Project:        desc.Project,
		StackPrefix:    desc.StackPrefix,
		BuildMode:      in.BuildMode,
		EnvironmentTag: in.Environment,
	})
	if err != nil {
		return nil, err
	}

	correlationID := ""
	if in.BuildMode {
		length := in.CorrelationIDLength
		if length == 0 {
			length = token.DefaultLength
		}
		correlationID, err = token.Generate(length)
		if err != nil {
			return nil, err
		}
		name = name + "-" + correlationID
		if err := naming.CheckLength(name); err != nil {
			return nil, err
		}
	}

	return &Outputs{
		StackName:     name,
		Template:      desc.Template,
		CorrelationID: correlationID,
		Parameters:    parameters,
		Tags:          tags,
	}, nil
}

// validateInputs performs the pre-I/O checks.
func validateInputs(in Inputs) error {
	if in.RootPath == "" && in.FS == nil {
		return errors.New(errors.CodeInvalidInput, "root path must not be empty")
	}
	if !in.BuildMode {
		if err := naming.ValidateEnvironmentTag(in.Environment); err != nil {
			return err
		}
	}
	return nil
}

// mergeDocuments loads the default and optional environment documents for
// one kind, merges them, and renders the wire records.
func mergeDocuments(
	loadDefault func() (document.Map, error),
	loadEnvironment func(string) (document.Map, bool, error),
	environment string,
	kind merge.Kind,
) ([]merge.Record, error) {
	base, err := loadDefault()
	if err != nil {
		return nil, err
	}

	override, present, err := loadEnvironment(environment)
	if err != nil {
		return nil, err
	}
	if !present {
		override = nil
	}

	merged, err := merge.Merge(base, override, kind)
	if err != nil {
		return nil, err
	}
	return merge.ToWireFormat(merged, kind)
}

// appendProvenance adds the fixed provenance entries to the tag records.
// A provenance key wins over an authored tag of the same name. The combined
// list still honors the tag count and value-length limits.
func appendProvenance(tags []merge.Record, meta provenance.Metadata) ([]merge.Record, error) {
	appended := meta.Records()

	reserved := make(map[string]bool, len(appended))
	for _, r := range appended {
		reserved[r.Name] = true
	}

	out := make([]merge.Record, 0, len(tags)+len(appended))
	for _, r := range tags {
		if !reserved[r.Name] {
			out = append(out, r)
		}
	}
	out = append(out, appended...)

	if len(out) > maxTagRecords {
		return nil, errors.NewWithContext(errors.CodeLimitExceeded,
			fmt.Sprintf("tag list has %d entries after provenance, limit is %d",
				len(out), maxTagRecords),
			map[string]any{"limit": maxTagRecords})
	}
	for _, r := range out {
		if len(r.Value) > maxTagValueLen {
			return nil, errors.NewWithContext(errors.CodeLimitExceeded,
				fmt.Sprintf("tag %q value is %d characters, limit is %d",
					r.Name, len(r.Value), maxTagValueLen),
				map[string]any{"key": r.Name, "limit": maxTagValueLen})
		}
	}
	return out, nil
}
