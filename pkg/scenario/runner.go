package scenario

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/helmcode/kubectl-ai-harness/pkg/config"
	"github.com/helmcode/kubectl-ai-harness/pkg/executor"
	"github.com/helmcode/kubectl-ai-harness/pkg/formatter"
	"github.com/helmcode/kubectl-ai-harness/pkg/model"
	"go.uber.org/zap"
)

// ErrPodNotFound is returned by FindPod when no pod matches the prefix.
var ErrPodNotFound = errors.New("no pod found with prefix")

// Analyzer performs the two model calls of a run.
type Analyzer interface {
	Classify(ctx context.Context, podStatus string) (model.Classification, string)
	Diagnose(ctx context.Context, pkg *model.ContextPackage) string
}

// Collector gathers diagnostic context for a classified pod.
type Collector interface {
	Collect(ctx context.Context, pod string, classification model.Classification) *model.ContextPackage
}

// Sink receives everything shown to the operator.
type Sink interface {
	Rule(title string)
	Panel(p formatter.Panel)
	Status(msg string)
	Progress(msg string) (stop func())
}

// Deps are the collaborators of a Runner. Executor, Analyzer, Collector,
// Sink and Manifests are required.
type Deps struct {
	Executor  executor.Executor
	Analyzer  Analyzer
	Collector Collector
	Sink      Sink
	Logger    *zap.Logger

	Timing config.TimingConfig
	// WorkerNode is substituted for {node_name}; scenarios that require a
	// node are skipped when it is empty.
	WorkerNode string
	Namespace  string

	// Manifests holds the scenario manifests; ManifestDir is the same
	// directory as seen by kubectl.
	Manifests   fs.FS
	ManifestDir string

	Sleep    func(time.Duration)
	Pause    func()
	NewRunID func() string
}

// Runner drives scenarios one after another.
type Runner struct {
	Deps
}

func NewRunner(d Deps) *Runner {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Sleep == nil {
		d.Sleep = time.Sleep
	}
	if d.NewRunID == nil {
		d.NewRunID = uuid.NewString
	}
	if d.Timing.IdentifyAttempts < 1 {
		d.Timing.IdentifyAttempts = 1
	}
	return &Runner{Deps: d}
}

// run carries the data passed between the states of one scenario.
type run struct {
	scenario model.Scenario
	result   *model.Result
	logger   *zap.Logger
}

// Run executes scenarios sequentially and returns one result per scenario
// started. Once ctx is done no further scenario is started.
func (r *Runner) Run(ctx context.Context, scenarios []model.Scenario) []model.Result {
	results := make([]model.Result, 0, len(scenarios))
	for i, s := range scenarios {
		if ctx.Err() != nil {
			r.Logger.Warn("run interrupted", zap.Int("remaining", len(scenarios)-i))
			break
		}
		results = append(results, r.RunScenario(ctx, s))
	}
	return results
}

// RunScenario walks one scenario through its states. Once setup has started,
// cleanup always runs, even after ctx is canceled.
func (r *Runner) RunScenario(ctx context.Context, s model.Scenario) model.Result {
	start := time.Now()
	res := model.Result{ScenarioID: s.ID, RunID: r.NewRunID()}
	st := &run{
		scenario: s,
		result:   &res,
		logger:   r.Logger.With(zap.String("scenario", s.ID), zap.String("run_id", res.RunID)),
	}

	st.logger.Info("scenario started")
	r.Sink.Rule("Running Scenario: " + s.ID)
	state := StateSetup
	for state != StateDone {
		if state != StateCleanup {
			res.LastState = state.String()
		}
		st.logger.Debug("entering state", zap.Stringer("state", state))

		next, err := r.step(ctx, state, st)
		if err != nil {
			st.logger.Error("scenario failed", zap.Stringer("state", state), zap.Error(err))
			res.Error = err.Error()
			r.Sink.Panel(formatter.Panel{Title: "Scenario Error", Body: err.Error(), Style: formatter.StyleError})
			next = StateCleanup
		}
		state = next
	}

	res.Duration = time.Since(start)
	st.logger.Info("scenario finished",
		zap.String("outcome", res.Outcome()),
		zap.String("classification", res.Classification.String()),
		zap.Duration("duration", res.Duration),
	)
	return res
}

func (r *Runner) step(ctx context.Context, state State, st *run) (State, error) {
	if state != StateCleanup && ctx.Err() != nil {
		return StateCleanup, fmt.Errorf("interrupted: %w", ctx.Err())
	}
	switch state {
	case StateSetup:
		return r.setup(ctx, st)
	case StateApplied:
		return r.apply(ctx, st)
	case StateWaiting:
		stop := r.Sink.Progress(fmt.Sprintf("Waiting %s for the pod to enter an error state...", r.Timing.SettleDelay))
		r.Sleep(r.Timing.SettleDelay)
		stop()
		return StateIdentifying, nil
	case StateIdentifying:
		return r.identify(ctx, st)
	case StateClassifying:
		return r.classify(ctx, st)
	case StateContextCollection:
		r.Sink.Status("Step 2: Collecting detailed context based on classification...")
		st.result.Context = r.Collector.Collect(ctx, st.result.Pod, st.result.Classification)
		return StateDiagnosing, nil
	case StateDiagnosing:
		r.Sink.Status("Step 3: Requesting deep diagnosis and remediation from LLM...")
		stop := r.Sink.Progress("Waiting for the model...")
		st.result.Diagnosis = r.Analyzer.Diagnose(ctx, st.result.Context)
		stop()
		return StateDisplaying, nil
	case StateDisplaying:
		r.display(st)
		return StateCleanup, nil
	case StateCleanup:
		r.cleanup(ctx, st)
		return StateDone, nil
	default:
		return StateDone, fmt.Errorf("unknown state %d", state)
	}
}

func (r *Runner) setup(ctx context.Context, st *run) (State, error) {
	s := st.scenario
	if s.RequiresNode && r.WorkerNode == "" {
		st.result.Skipped = "no suitable worker node was found"
		r.Sink.Status("Skipping scenario: no suitable worker node was found.")
		st.logger.Warn("scenario skipped, no worker node")
		return StateDone, nil
	}

	if s.PreRun != "" {
		command := s.PreRunCommand(r.WorkerNode)
		r.Sink.Panel(formatter.Panel{Title: "Pre-run Command", Body: command, Style: formatter.StyleCommand, Kind: formatter.KindCode})
		if _, err := r.Executor.Run(ctx, command, false); err != nil {
			return StateCleanup, fmt.Errorf("pre-run command: %w", err)
		}
	}
	return StateApplied, nil
}

func (r *Runner) apply(ctx context.Context, st *run) (State, error) {
	manifest, err := fs.ReadFile(r.Manifests, st.scenario.Manifest)
	if err != nil {
		return StateCleanup, fmt.Errorf("reading manifest %s: %w", st.scenario.Manifest, err)
	}

	manifestPath := path.Join(r.ManifestDir, st.scenario.Manifest)
	r.Sink.Panel(formatter.Panel{
		Title: "Applying Manifest: " + manifestPath,
		Body:  strings.TrimRight(string(manifest), "\n"),
		Style: formatter.StyleError,
		Kind:  formatter.KindCode,
	})
	if _, err := r.Executor.Run(ctx, r.kubectl("kubectl apply -f "+manifestPath), false); err != nil {
		return StateCleanup, fmt.Errorf("applying manifest: %w", err)
	}
	return StateWaiting, nil
}

func (r *Runner) identify(ctx context.Context, st *run) (State, error) {
	pod, err := r.FindPod(ctx, st.scenario.PodPrefix)
	if errors.Is(err, ErrPodNotFound) {
		st.result.Skipped = err.Error()
		r.Sink.Status("Could not find the pod for this scenario. Skipping.")
		st.logger.Warn("pod not found", zap.String("prefix", st.scenario.PodPrefix))
		return StateCleanup, nil
	}
	if err != nil {
		return StateCleanup, err
	}

	st.result.Pod = pod
	st.logger = st.logger.With(zap.String("pod", pod))
	r.Sink.Panel(formatter.Panel{Title: "Pod Identification", Body: "Identified failing pod: " + pod, Style: formatter.StyleInfo})
	return StateClassifying, nil
}

func (r *Runner) classify(ctx context.Context, st *run) (State, error) {
	r.Sink.Status("Step 1: Classifying failure type...")
	status, err := r.Executor.Run(ctx, r.kubectl("kubectl get pod "+st.result.Pod), false)
	if err != nil {
		return StateCleanup, fmt.Errorf("reading pod status: %w", err)
	}

	stop := r.Sink.Progress("Waiting for the model...")
	classification, raw := r.Analyzer.Classify(ctx, status)
	stop()

	st.result.Classification = classification
	st.result.RawClassification = raw
	if !classification.Known() {
		st.logger.Warn("model returned an unknown classification", zap.String("answer", raw))
	}
	r.Sink.Panel(formatter.Panel{Title: "LLM Classification Result", Body: classification.String(), Style: formatter.StyleSuccess})
	return StateContextCollection, nil
}

func (r *Runner) display(st *run) {
	r.Sink.Panel(formatter.Panel{Title: "Scenario Description", Body: st.scenario.Description, Style: formatter.StyleTitle})
	r.Sink.Panel(formatter.Panel{
		Title: "Diagnostic Context Package Sent to LLM",
		Body:  st.result.Context.String(),
		Style: formatter.StyleWarn,
		Kind:  formatter.KindCode,
	})
	r.Sink.Panel(formatter.Panel{
		Title: "LLM Analysis & Remediation Plan",
		Body:  st.result.Diagnosis,
		Style: formatter.StyleSuccess,
		Kind:  formatter.KindMarkdown,
	})
}

func (r *Runner) cleanup(ctx context.Context, st *run) {
	interrupted := ctx.Err() != nil
	ctx = context.WithoutCancel(ctx)
	s := st.scenario
	r.Sink.Panel(formatter.Panel{Title: "Cleanup", Body: "Cleaning up resources for scenario " + s.ID, Style: formatter.StyleError})

	del := r.kubectl(fmt.Sprintf("kubectl delete %s %s --grace-period=0 --force", s.CleanupKind, s.CleanupName))
	if _, err := r.Executor.Run(ctx, del, true); err != nil {
		st.logger.Warn("cleanup failed", zap.Error(err))
	}

	if s.PostRun != "" {
		command := s.PostRunCommand(r.WorkerNode)
		r.Sink.Panel(formatter.Panel{Title: "Post-run Cleanup Command", Body: command, Style: formatter.StyleCommand, Kind: formatter.KindCode})
		if _, err := r.Executor.Run(ctx, command, true); err != nil {
			st.logger.Warn("post-run command failed", zap.Error(err))
		}
	}

	r.Sleep(r.Timing.CleanupDelay)
	if r.Pause != nil && !interrupted {
		r.Pause()
	}
}

// FindPod polls the pod list for a name starting with prefix. It waits
// IdentifyDelay first and PollInterval between attempts.
func (r *Runner) FindPod(ctx context.Context, prefix string) (string, error) {
	r.Sleep(r.Timing.IdentifyDelay)
	for attempt := 1; attempt <= r.Timing.IdentifyAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		out, err := r.Executor.Run(ctx, r.kubectl("kubectl get pods -o name"), true)
		if err != nil {
			r.Logger.Warn("listing pods failed", zap.Int("attempt", attempt), zap.Error(err))
		}
		if pod := matchPod(out, prefix); pod != "" {
			return pod, nil
		}
		if attempt < r.Timing.IdentifyAttempts {
			r.Sleep(r.Timing.PollInterval)
		}
	}
	return "", fmt.Errorf("%w %q after %d attempts", ErrPodNotFound, prefix, r.Timing.IdentifyAttempts)
}

func matchPod(list, prefix string) string {
	for _, line := range strings.Split(list, "\n") {
		name := strings.TrimPrefix(strings.TrimSpace(line), "pod/")
		if name != "" && strings.HasPrefix(name, prefix) {
			return name
		}
	}
	return ""
}

func (r *Runner) kubectl(command string) string {
	if r.Namespace == "" {
		return command
	}
	return command + " -n " + r.Namespace
}
