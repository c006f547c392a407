package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/action"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/merge"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/token"
)

// Output keys exposed to downstream workflow steps.
const (
	outStackName     = "stack-name"
	outTemplate      = "template"
	outCorrelationID = "correlation-id"
	outParameters    = "parameters"
	outTags          = "tags"
)

// emitOutputs appends the run's outputs to the GitHub Actions output file.
// An empty path (running outside a workflow) is a no-op; the summary printed
// to stdout is the only output then.
func emitOutputs(outputs *action.Outputs, path string) error {
	if path == "" {
		return nil
	}

	body, err := renderOutputs(outputs)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open output file %q: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(body); err != nil {
		return fmt.Errorf("write output file %q: %w", path, err)
	}
	return nil
}

// renderOutputs formats the outputs in the workflow command syntax: plain
// key=value lines for scalars, heredoc blocks for the JSON lists. The
// heredoc delimiter is randomized so payload content can never terminate a
// block early.
func renderOutputs(outputs *action.Outputs) (string, error) {
	params, err := merge.Parameter.EncodeJSON(outputs.Parameters)
	if err != nil {
		return "", err
	}
	tags, err := merge.Tag.EncodeJSON(outputs.Tags)
	if err != nil {
		return "", err
	}

	suffix, err := token.Generate(token.MaxLength)
	if err != nil {
		return "", err
	}
	delimiter := "ghadelimiter_" + suffix

	var b strings.Builder
	writeScalar := func(key, value string) {
		b.WriteString(key)
		b.WriteString("=")
		b.WriteString(value)
		b.WriteString("\n")
	}
	writeBlock := func(key, value string) {
		b.WriteString(key)
		b.WriteString("<<")
		b.WriteString(delimiter)
		b.WriteString("\n")
		b.WriteString(value)
		b.WriteString("\n")
		b.WriteString(delimiter)
		b.WriteString("\n")
	}

	writeScalar(outStackName, outputs.StackName)
	writeScalar(outTemplate, outputs.Template)
	writeScalar(outCorrelationID, outputs.CorrelationID)
	writeBlock(outParameters, string(params))
	writeBlock(outTags, string(tags))
	return b.String(), nil
}

// printSummary writes a short human-readable recap for the workflow log.
func printSummary(w io.Writer, outputs *action.Outputs) {
	heading := color.New(color.FgCyan, color.Bold)
	label := color.New(color.FgGreen)

	heading.Fprintln(w, "Stack configuration resolved")
	fmt.Fprintf(w, "  %s %s\n", label.Sprint("stack name:"), outputs.StackName)
	fmt.Fprintf(w, "  %s %s\n", label.Sprint("template:"), outputs.Template)
	if outputs.CorrelationID != "" {
		fmt.Fprintf(w, "  %s %s\n", label.Sprint("correlation id:"), outputs.CorrelationID)
	}
	fmt.Fprintf(w, "  %s %d parameters, %d tags\n", label.Sprint("merged:"),
		len(outputs.Parameters), len(outputs.Tags))
}
