package action

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/errors"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/fsys"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/merge"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/provenance"
)

type stubBranches struct {
	branch string
	err    error
}

func (s stubBranches) CurrentBranch(context.Context) (string, error) {
	return s.branch, s.err
}

// seedFS builds an in-memory configuration root.
func seedFS(t *testing.T, files map[string]string) *fsys.FS {
	t.Helper()
	fs := fsys.NewMemory()
	for name, content := range files {
		require.NoError(t, fs.WriteFile(name, []byte(content), 0o644))
	}
	return fs
}

func testMetadata() provenance.Metadata {
	return provenance.Metadata{
		Commit:       "abc123",
		Actor:        "octocat",
		Workflow:     "deploy",
		Organization: "octo-org",
		Repository:   "octo-org/widgets",
		Timestamp:    time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}
}

func findRecord(records []merge.Record, name string) (string, bool) {
	for _, r := range records {
		if r.Name == name {
			return r.Value, true
		}
	}
	return "", false
}

func TestRunDeploymentModeWithoutEnvironmentFile(t *testing.T) {
	fs := seedFS(t, map[string]string{
		"cloudformation.json": `{"project":"myapp","template":"stack.yaml","stack-prefix":"api"}`,
		"params/default.json": `{"VpcId":"vpc-default","InstanceType":"t3.micro"}`,
	})

	out, err := Run(context.Background(), Inputs{
		Environment: "sb-prod-us-east-1",
		FS:          fs,
		Metadata:    testMetadata(),
	})
	require.NoError(t, err)

	assert.Equal(t, "myapp-api-sb-prod-us-east-1", out.StackName)
	assert.Equal(t, "stack.yaml", out.Template)
	assert.Empty(t, out.CorrelationID)

	assert.Equal(t, []merge.Record{
		{Name: "InstanceType", Value: "t3.micro"},
		{Name: "VpcId", Value: "vpc-default"},
	}, out.Parameters)
}

func TestRunEnvironmentOverrides(t *testing.T) {
	fs := seedFS(t, map[string]string{
		"cloudformation.json": `{"project":"myapp","template":"stack.yaml","stack-prefix":"api"}`,
		"params/default.json": `{"VpcId":"vpc-default"}`,
		"params/prod.json":    `{"VpcId":"vpc-prod-123","AlarmEmail":"a@b.com"}`,
	})

	out, err := Run(context.Background(), Inputs{
		Environment: "prod",
		FS:          fs,
		Metadata:    testMetadata(),
	})
	require.NoError(t, err)

	vpc, ok := findRecord(out.Parameters, "VpcId")
	require.True(t, ok)
	assert.Equal(t, "vpc-prod-123", vpc)

	email, ok := findRecord(out.Parameters, "AlarmEmail")
	require.True(t, ok)
	assert.Equal(t, "a@b.com", email)
}

func TestRunBuildMode(t *testing.T) {
	fs := seedFS(t, map[string]string{
		"cloudformation.json": `{"project":"myapp","template":"stack.yaml","stack-prefix":"api"}`,
		"params/default.json": `{}`,
	})

	out, err := Run(context.Background(), Inputs{
		BuildMode: true,
		FS:        fs,
		Branches:  stubBranches{branch: "feature/JIRA-123_fix-user@auth.issue"},
		Metadata:  testMetadata(),
	})
	require.NoError(t, err)

	require.Len(t, out.CorrelationID, 8)
	assert.Equal(t,
		"myapp-api-feature-jira-123-fix-user-auth-issue-"+out.CorrelationID,
		out.StackName)
}

func TestRunBuildModeDetachedHead(t *testing.T) {
	fs := seedFS(t, map[string]string{
		"cloudformation.json": `{"project":"myapp","template":"stack.yaml","stack-prefix":"api"}`,
		"params/default.json": `{}`,
	})

	_, err := Run(context.Background(), Inputs{
		BuildMode: true,
		FS:        fs,
		Branches:  stubBranches{branch: "HEAD"},
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeBranchResolution, errors.GetCode(err))
}

func TestRunTagsCarryProvenance(t *testing.T) {
	fs := seedFS(t, map[string]string{
		"cloudformation.json": `{"project":"myapp","template":"stack.yaml","stack-prefix":"api"}`,
		"params/default.json": `{}`,
		"tags/default.json":   `{"CostCenter":"eng","DeployedBy":"handwritten"}`,
	})

	out, err := Run(context.Background(), Inputs{
		Environment: "dev",
		FS:          fs,
		Metadata:    testMetadata(),
	})
	require.NoError(t, err)

	cost, ok := findRecord(out.Tags, "CostCenter")
	require.True(t, ok)
	assert.Equal(t, "eng", cost)

	// Provenance wins over an authored tag of the same name.
	actor, ok := findRecord(out.Tags, provenance.KeyActor)
	require.True(t, ok)
	assert.Equal(t, "octocat", actor)

	when, ok := findRecord(out.Tags, provenance.KeyTimestamp)
	require.True(t, ok)
	assert.Equal(t, "2026-08-30T12:00:00Z", when)
}

func TestRunAbsentDefaultTagsStillYieldsProvenance(t *testing.T) {
	fs := seedFS(t, map[string]string{
		"cloudformation.json": `{"project":"myapp","template":"stack.yaml","stack-prefix":"api"}`,
		"params/default.json": `{}`,
	})

	out, err := Run(context.Background(), Inputs{
		Environment: "dev",
		FS:          fs,
		Metadata:    testMetadata(),
	})
	require.NoError(t, err)
	assert.Len(t, out.Tags, 6)
}

func TestRunInputValidationBeforeIO(t *testing.T) {
	// The filesystem is empty: were any I/O attempted first, the error
	// would be NotFound rather than InvalidInput.
	fs := fsys.NewMemory()

	_, err := Run(context.Background(), Inputs{
		Environment: "bad/env",
		FS:          fs,
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestRunMissingEnvironmentTagInDeploymentMode(t *testing.T) {
	_, err := Run(context.Background(), Inputs{FS: fsys.NewMemory()})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestRunDescriptorErrorPropagates(t *testing.T) {
	fs := seedFS(t, map[string]string{
		"cloudformation.json": `{"project":"myapp","template":"stack.yaml"}`,
		"params/default.json": `{}`,
	})

	_, err := Run(context.Background(), Inputs{Environment: "dev", FS: fs})
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingField, errors.GetCode(err))
	assert.Contains(t, err.Error(), "stack-prefix")
}

func TestRunMalformedEnvironmentDocumentIsFatal(t *testing.T) {
	fs := seedFS(t, map[string]string{
		"cloudformation.json": `{"project":"myapp","template":"stack.yaml","stack-prefix":"api"}`,
		"params/default.json": `{}`,
		"params/dev.json":     `[1,2]`,
	})

	_, err := Run(context.Background(), Inputs{Environment: "dev", FS: fs})
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotAnObject, errors.GetCode(err))
}

func TestRunCorrelationIDLengthValidation(t *testing.T) {
	fs := seedFS(t, map[string]string{
		"cloudformation.json": `{"project":"myapp","template":"stack.yaml","stack-prefix":"api"}`,
		"params/default.json": `{}`,
	})

	_, err := Run(context.Background(), Inputs{
		BuildMode:           true,
		FS:                  fs,
		Branches:            stubBranches{branch: "main"},
		CorrelationIDLength: 11,
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidLength, errors.GetCode(err))
}

func TestRunNameTooLongAfterCorrelationID(t *testing.T) {
	fs := seedFS(t, map[string]string{
		"cloudformation.json": `{"project":"` + strings.Repeat("a", 50) + `","template":"t.yaml","stack-prefix":"` + strings.Repeat("b", 50) + `"}`,
		"params/default.json": `{}`,
	})

	// 50 + 1 + 50 + 1 + 18 = 120 fits, but +9 for "-{cid}" overflows.
	_, err := Run(context.Background(), Inputs{
		BuildMode: true,
		FS:        fs,
		Branches:  stubBranches{branch: strings.Repeat("c", 18)},
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeNameTooLong, errors.GetCode(err))
}
