package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/action"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/merge"
)

func sampleOutputs() *action.Outputs {
	return &action.Outputs{
		StackName:     "myapp-api-dev",
		Template:      "stack.yaml",
		CorrelationID: "abcdefgh",
		Parameters: []merge.Record{
			{Name: "VpcId", Value: "vpc-prod-123"},
		},
		Tags: []merge.Record{
			{Name: "CostCenter", Value: "eng"},
		},
	}
}

func TestRenderOutputs(t *testing.T) {
	body, err := renderOutputs(sampleOutputs())
	require.NoError(t, err)

	assert.Contains(t, body, "stack-name=myapp-api-dev\n")
	assert.Contains(t, body, "template=stack.yaml\n")
	assert.Contains(t, body, "correlation-id=abcdefgh\n")
	assert.Contains(t, body, `[{"ParameterName":"VpcId","ParameterValue":"vpc-prod-123"}]`)
	assert.Contains(t, body, `[{"Key":"CostCenter","Value":"eng"}]`)

	// Heredoc blocks are properly opened and closed.
	assert.Equal(t, 2, strings.Count(body, "<<ghadelimiter_"))
}

func TestEmitOutputsAppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "github_output")
	require.NoError(t, os.WriteFile(path, []byte("previous=1\n"), 0o644))

	require.NoError(t, emitOutputs(sampleOutputs(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "previous=1\n"))
	assert.Contains(t, string(data), "stack-name=myapp-api-dev")
}

func TestEmitOutputsNoopWithoutPath(t *testing.T) {
	require.NoError(t, emitOutputs(sampleOutputs(), ""))
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, sampleOutputs())

	out := buf.String()
	assert.Contains(t, out, "myapp-api-dev")
	assert.Contains(t, out, "1 parameters, 1 tags")
}

func TestNewBranchResolver(t *testing.T) {
	_, err := newBranchResolver(&options{BranchSource: "exec"})
	require.NoError(t, err)

	_, err = newBranchResolver(&options{BranchSource: "repo"})
	require.NoError(t, err)

	_, err = newBranchResolver(&options{BranchSource: "svn"})
	require.Error(t, err)
}
