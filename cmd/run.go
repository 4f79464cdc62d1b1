package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/helmcode/kubectl-ai-harness/pkg/analyzer"
	"github.com/helmcode/kubectl-ai-harness/pkg/collector"
	"github.com/helmcode/kubectl-ai-harness/pkg/config"
	"github.com/helmcode/kubectl-ai-harness/pkg/executor"
	"github.com/helmcode/kubectl-ai-harness/pkg/formatter"
	"github.com/helmcode/kubectl-ai-harness/pkg/k8s"
	"github.com/helmcode/kubectl-ai-harness/pkg/llm"
	"github.com/helmcode/kubectl-ai-harness/pkg/scenario"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type runOptions struct {
	configPath   string
	kubeconfig   string
	kubeContext  string
	node         string
	provider     string
	model        string
	outputFormat string
	interactive  bool
	verbose      bool
}

func NewRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [SCENARIO...]",
		Short: "Run failing-pod scenarios against the current cluster",
		Long: `Deploy each scenario's broken manifest, wait for the pod to fail, ask the
model to classify the failure, collect matching diagnostics and request a
root cause analysis. Resources are cleaned up after every scenario.

Examples:
  # Run the whole catalog
  kubectl-ai-harness run

  # Run two scenarios and pause between them
  kubectl-ai-harness run 9_oomkilled 4_invalid_image_name --interactive

  # Use Claude and print a JSON report
  LLM_PROVIDER=claude ANTHROPIC_API_KEY=... kubectl-ai-harness run -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd.Context(), opts, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.kubeconfig, "kubeconfig", "", "Path to kubeconfig file (defaults to $KUBECONFIG or ~/.kube/config)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to harness config file (defaults to the built-in catalog)")
	cmd.Flags().StringVar(&opts.kubeContext, "context", "", "Kubeconfig context to use")
	cmd.Flags().StringVar(&opts.node, "node", "", "Worker node for taint scenarios (discovered when empty)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "LLM provider (gateway, claude, openai)")
	cmd.Flags().StringVar(&opts.model, "model", "", "Model name sent to the provider")
	cmd.Flags().StringVarP(&opts.outputFormat, "output", "o", "human", "Report format (human, json, yaml)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Wait for Enter between scenarios")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func runScenarios(ctx context.Context, opts *runOptions, ids []string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	switch opts.outputFormat {
	case "human", "json", "yaml":
	default:
		return fmt.Errorf("unsupported output format %q (supported: human, json, yaml)", opts.outputFormat)
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadAndValidate(opts.configPath)
	if err != nil {
		return err
	}
	scenarios, err := cfg.Select(ids)
	if err != nil {
		return err
	}

	model, err := newModel(cfg.LLM, opts)
	if err != nil {
		return err
	}

	// Panels go to stderr when stdout carries a machine readable report.
	panelOut := stdout
	if opts.outputFormat != "human" {
		panelOut = stderr
	}
	console := formatter.NewConsole(panelOut, consoleOptions(panelOut)...)

	printHeader(panelOut, cfg, model, len(scenarios))

	node := opts.node
	if node == "" {
		node = discoverWorkerNode(ctx, opts, console, logger)
	}
	if node != "" {
		console.Success("Using worker node " + node)
	} else {
		console.Warn("No suitable worker node found; taint scenarios will be skipped")
	}

	exec := executor.WithKubectlFlags(executor.NewShell(logger), executor.KubeconfigFlags(opts.kubeconfig, opts.kubeContext)...)
	runner := scenario.NewRunner(scenario.Deps{
		Executor:    exec,
		Analyzer:    analyzer.NewWithLimits(model, cfg.LLM.ClassifyMaxTokens, cfg.LLM.DiagnoseMaxTokens),
		Collector:   collector.New(exec, collector.WithNamespace(cfg.Namespace), collector.WithLogger(logger)),
		Sink:        console,
		Logger:      logger,
		Timing:      cfg.Timing,
		WorkerNode:  node,
		Namespace:   cfg.Namespace,
		Manifests:   os.DirFS(cfg.ScenarioDir),
		ManifestDir: cfg.ScenarioDir,
	})
	if opts.interactive {
		runner.Pause = func() { console.WaitForEnter(os.Stdin) }
	}

	results := runner.Run(ctx, scenarios)
	return formatter.DisplayReport(stdout, results, opts.outputFormat)
}

func newModel(c config.LLMConfig, opts *runOptions) (llm.LLM, error) {
	settings := llm.Settings{
		Provider: llm.Provider(opts.provider),
		Model:    opts.model,
		Timeout:  c.Timeout,
	}
	settings = llm.FromEnv(settings)
	if settings.Provider == "" {
		settings.Provider = llm.Provider(c.Provider)
	}
	// The configured URL and model belong to the configured provider; a
	// different provider falls back to its own defaults.
	if settings.Provider == llm.Provider(c.Provider) {
		if settings.URL == "" {
			settings.URL = c.URL
		}
		if settings.Model == "" {
			settings.Model = c.Model
		}
	}

	model, err := llm.Create(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return model, nil
}

func discoverWorkerNode(ctx context.Context, opts *runOptions, console *formatter.Console, logger *zap.Logger) string {
	stop := console.Progress("Looking for a worker node...")
	defer stop()

	client, err := k8s.NewClient(opts.kubeconfig, opts.kubeContext)
	if err != nil {
		logger.Warn("failed to connect to cluster", zap.Error(err))
		return ""
	}
	node, err := client.FindWorkerNode(ctx)
	if err != nil {
		logger.Warn("failed to list nodes", zap.Error(err))
		return ""
	}
	return node
}

// consoleOptions sizes the console to the terminal behind out. Anything that
// is not a terminal gets no spinner.
func consoleOptions(out io.Writer) []formatter.ConsoleOption {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return []formatter.ConsoleOption{formatter.WithoutSpinner()}
	}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
		return []formatter.ConsoleOption{formatter.WithWidth(width)}
	}
	return nil
}

func printHeader(out io.Writer, cfg *config.Config, model llm.LLM, count int) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(out)
	cyan.Fprintln(out, "🔍 Kubernetes Failure Scenario Harness")
	fmt.Fprintf(out, "🤖 Model: %s\n", model.GetModel())
	fmt.Fprintf(out, "📂 Manifests: %s\n", cfg.ScenarioDir)
	if cfg.Namespace != "" {
		fmt.Fprintf(out, "📍 Namespace: %s\n", cfg.Namespace)
	}
	fmt.Fprintf(out, "📊 Scenarios: %d\n", count)
	fmt.Fprintln(out)
}
