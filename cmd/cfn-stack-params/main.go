// main.go bootstraps the cfn-stack-params action: it builds the root Cobra
// command, binds GitHub Actions input variables through Viper, and executes
// with a signal-aware context.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/action"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/gitcli"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/gitrepo"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/naming"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/provenance"
	"github.com/subhamay-bhattacharyya-gha/cfn-stack-params-action/token"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// options holds the CLI configuration after flag and environment binding.
type options struct {
	RootPath     string
	BuildMode    bool
	Environment  string
	CIDLength    int
	BranchSource string
	LogLevel     string
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "cfn-stack-params",
		Short: "Merge CloudFormation stack parameters and tags for a deployment",
		Long: "cfn-stack-params loads a cloudformation.json descriptor plus default and\n" +
			"per-environment parameter and tag documents, merges them with override\n" +
			"precedence, resolves the stack name, and emits the results as GitHub\n" +
			"Actions outputs.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return bindInputs(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.RootPath, "root-path", ".", "Directory holding cloudformation.json, params/, and tags/")
	cmd.Flags().BoolVar(&opts.BuildMode, "build-mode", false, "Derive the stack name from the current branch and append a correlation id")
	cmd.Flags().StringVar(&opts.Environment, "environment", "", "Target environment tag (required unless --build-mode)")
	cmd.Flags().IntVar(&opts.CIDLength, "cid-length", token.DefaultLength, "Correlation id length (6-10)")
	cmd.Flags().StringVar(&opts.BranchSource, "branch-source", "exec", "Branch lookup implementation: exec (git CLI) or repo (in-process)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	return cmd
}

// bindInputs lets GitHub Actions INPUT_* variables stand in for unset flags,
// so the same binary serves both workflow and local invocations.
func bindInputs(cmd *cobra.Command, opts *options) error {
	v := viper.New()
	v.SetEnvPrefix("INPUT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}

	for _, name := range []string{"root-path", "build-mode", "environment", "cid-length", "branch-source", "log-level"} {
		if !cmd.Flags().Changed(name) && v.IsSet(name) {
			if err := cmd.Flags().Set(name, v.GetString(name)); err != nil {
				return fmt.Errorf("apply input %s: %w", name, err)
			}
		}
	}
	return nil
}

func run(ctx context.Context, opts *options) error {
	logger, err := newLogger(opts.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("resolving stack parameters",
		zap.String("root", opts.RootPath),
		zap.Bool("buildMode", opts.BuildMode),
		zap.String("environment", opts.Environment),
	)

	branches, err := newBranchResolver(opts)
	if err != nil {
		return err
	}

	outputs, err := action.Run(ctx, action.Inputs{
		RootPath:            opts.RootPath,
		BuildMode:           opts.BuildMode,
		Environment:         opts.Environment,
		Branches:            branches,
		Metadata:            provenance.FromLookup(os.LookupEnv, time.Now()),
		CorrelationIDLength: opts.CIDLength,
	})
	if err != nil {
		return err
	}

	logger.Info("stack parameters resolved",
		zap.String("stackName", outputs.StackName),
		zap.Int("parameters", len(outputs.Parameters)),
		zap.Int("tags", len(outputs.Tags)),
	)

	if err := emitOutputs(outputs, os.Getenv("GITHUB_OUTPUT")); err != nil {
		return err
	}
	printSummary(os.Stdout, outputs)
	return nil
}

// newBranchResolver picks the branch lookup implementation.
func newBranchResolver(opts *options) (naming.BranchResolver, error) {
	switch opts.BranchSource {
	case "exec":
		return gitcli.NewResolver(gitcli.WithWorkdir(opts.RootPath)), nil
	case "repo":
		return gitrepo.NewResolver(opts.RootPath), nil
	default:
		return nil, fmt.Errorf("unknown branch source %q (want exec or repo)", opts.BranchSource)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
