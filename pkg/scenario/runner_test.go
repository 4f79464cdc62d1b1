package scenario

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/helmcode/kubectl-ai-harness/pkg/analyzer"
	"github.com/helmcode/kubectl-ai-harness/pkg/collector"
	"github.com/helmcode/kubectl-ai-harness/pkg/config"
	"github.com/helmcode/kubectl-ai-harness/pkg/executor"
	"github.com/helmcode/kubectl-ai-harness/pkg/executor/executortest"
	"github.com/helmcode/kubectl-ai-harness/pkg/formatter"
	"github.com/helmcode/kubectl-ai-harness/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink keeps every panel and status line.
type recordingSink struct {
	rules    []string
	panels   []formatter.Panel
	statuses []string
}

func (s *recordingSink) Rule(title string) { s.rules = append(s.rules, title) }
func (s *recordingSink) Panel(p formatter.Panel) { s.panels = append(s.panels, p) }
func (s *recordingSink) Status(msg string) { s.statuses = append(s.statuses, msg) }
func (s *recordingSink) Progress(string) func() { return func() {} }

func (s *recordingSink) titles() []string {
	out := make([]string, len(s.panels))
	for i, p := range s.panels {
		out[i] = p.Title
	}
	return out
}

// scriptedLLM answers classification prompts with classification and
// everything else with diagnosis.
type scriptedLLM struct {
	classification string
	diagnosis      string
	err            error
	prompts        []string
}

func (l *scriptedLLM) Chat(_ context.Context, prompt string, _ int) (string, error) {
	l.prompts = append(l.prompts, prompt)
	if l.err != nil {
		return "", l.err
	}
	if strings.Contains(prompt, "Classify the failure") {
		return l.classification, nil
	}
	return l.diagnosis, nil
}

func (l *scriptedLLM) GetModel() string { return "scripted" }

type harness struct {
	exec   *executortest.Scripted
	llm    *scriptedLLM
	sink   *recordingSink
	sleeps []time.Duration
	pauses int
	runner *Runner
}

var testTiming = config.TimingConfig{
	SettleDelay:      15 * time.Second,
	IdentifyDelay:    5 * time.Second,
	IdentifyAttempts: 5,
	PollInterval:     2 * time.Second,
	CleanupDelay:     5 * time.Second,
}

func newHarness(node string) *harness {
	h := &harness{
		exec: executortest.New(),
		llm:  &scriptedLLM{classification: "SchedulingFailure", diagnosis: "**Root Cause:** CPU request too large"},
		sink: &recordingSink{},
	}
	h.runner = NewRunner(Deps{
		Executor:   h.exec,
		Analyzer:   analyzer.NewWithLLM(h.llm),
		Collector:  collector.New(h.exec),
		Sink:       h.sink,
		Timing:     testTiming,
		WorkerNode: node,
		Manifests: fstest.MapFS{
			"1_insufficient_cpu.yaml": {Data: []byte("kind: Deployment\n")},
			"2_taint_toleration.yaml": {Data: []byte("kind: Pod\n")},
		},
		ManifestDir: "scenarios",
		Sleep:       func(d time.Duration) { h.sleeps = append(h.sleeps, d) },
		Pause:       func() { h.pauses++ },
		NewRunID:    func() string { return "run-1" },
	})
	return h
}

var cpuScenario = model.Scenario{
	ID:          "1_insufficient_cpu",
	Description: "A pod requests more CPU than any node can provide, causing a 'Pending' state.",
	Manifest:    "1_insufficient_cpu.yaml",
	PodPrefix:   "high-cpu-app-",
	CleanupKind: "deployment",
	CleanupName: "high-cpu-app",
}

var taintScenario = model.Scenario{
	ID:           "2_taint_toleration",
	Manifest:     "2_taint_toleration.yaml",
	PreRun:       "kubectl taint nodes {node_name} special-workload=true:NoSchedule",
	PostRun:      "kubectl taint nodes {node_name} special-workload=true:NoSchedule-",
	RequiresNode: true,
	PodPrefix:    "app-needs-toleration",
	CleanupKind:  "pod",
	CleanupName:  "app-needs-toleration",
}

const cpuDeleteCmd = "kubectl delete deployment high-cpu-app --grace-period=0 --force"

func scriptInsufficientCPU(exec *executortest.Scripted) {
	exec.
		OnOutput("kubectl apply -f scenarios/1_insufficient_cpu.yaml", "deployment.apps/high-cpu-app created").
		OnOutput("kubectl get pods -o name", "pod/coredns-abc\npod/high-cpu-app-7d9f8-x2k4q").
		OnOutput("kubectl get pod high-cpu-app-7d9f8-x2k4q", "NAME                       READY   STATUS    RESTARTS   AGE\nhigh-cpu-app-7d9f8-x2k4q   0/1     Pending   0          20s").
		OnOutput("kubectl describe pod high-cpu-app-7d9f8-x2k4q", "Status: Pending\nEvents:\n  Warning  FailedScheduling  0/1 nodes are available: 1 Insufficient cpu.").
		OnOutput("kubectl describe nodes", "Name: worker-1\nAllocatable:\n  cpu: 2").
		OnOutput(cpuDeleteCmd, `deployment.apps "high-cpu-app" force deleted`)
}

func TestRunScenarioInsufficientCPU(t *testing.T) {
	h := newHarness("")
	scriptInsufficientCPU(h.exec)

	res := h.runner.RunScenario(context.Background(), cpuScenario)

	assert.Empty(t, res.Error)
	assert.Empty(t, res.Skipped)
	assert.Equal(t, "diagnosed", res.Outcome())
	assert.Equal(t, "run-1", res.RunID)
	assert.Equal(t, "high-cpu-app-7d9f8-x2k4q", res.Pod)
	assert.Equal(t, model.SchedulingFailure, res.Classification)
	assert.Equal(t, "Displaying", res.LastState)
	assert.Equal(t, "**Root Cause:** CPU request too large", res.Diagnosis)

	require.NotNil(t, res.Context)
	assert.Equal(t, []string{model.KeyPodDescription, model.KeyNodeDescriptions}, res.Context.Keys())
	for _, absent := range []string{model.KeyInitLogs, model.KeyContainerLogs, model.KeyEndpoints, model.KeyConfigMaps} {
		assert.False(t, res.Context.Has(absent), absent)
	}

	for _, cmd := range h.exec.Commands() {
		assert.NotContains(t, cmd, "kubectl logs")
		assert.NotContains(t, cmd, "endpoints")
	}
	assert.Equal(t, 1, h.exec.Count(cpuDeleteCmd))

	require.Len(t, h.llm.prompts, 2)
	assert.Contains(t, h.llm.prompts[0], "Pending")
	assert.Contains(t, h.llm.prompts[1], "--- NODE_DESCRIPTIONS ---\nName: worker-1")
	assert.NotContains(t, h.llm.prompts[1], "CONTAINER_LOGS")

	assert.Equal(t, []time.Duration{15 * time.Second, 5 * time.Second, 5 * time.Second}, h.sleeps)
	assert.Equal(t, 1, h.pauses)
	assert.Equal(t, []string{"Running Scenario: 1_insufficient_cpu"}, h.sink.rules)
	assert.Equal(t, []string{
		"Applying Manifest: scenarios/1_insufficient_cpu.yaml",
		"Pod Identification",
		"LLM Classification Result",
		"Scenario Description",
		"Diagnostic Context Package Sent to LLM",
		"LLM Analysis & Remediation Plan",
		"Cleanup",
	}, h.sink.titles())
}

func TestRunScenarioStrictCommands(t *testing.T) {
	h := newHarness("")
	scriptInsufficientCPU(h.exec)
	h.runner.RunScenario(context.Background(), cpuScenario)

	tolerant := map[string]bool{}
	for _, c := range h.exec.Calls() {
		tolerant[c.Command] = c.Tolerate
	}
	assert.False(t, tolerant["kubectl apply -f scenarios/1_insufficient_cpu.yaml"])
	assert.False(t, tolerant["kubectl get pod high-cpu-app-7d9f8-x2k4q"])
	assert.True(t, tolerant["kubectl get pods -o name"])
	assert.True(t, tolerant[cpuDeleteCmd])
}

func TestFindPodRetries(t *testing.T) {
	h := newHarness("")
	h.exec.On("kubectl get pods -o name",
		executortest.Response{},
		executortest.Response{Output: "pod/other"},
		executortest.Response{Fail: true, Stderr: "connection refused"},
		executortest.Response{Output: "pod/other"},
		executortest.Response{Output: "pod/other\npod/oom-pod"},
	)

	pod, err := h.runner.FindPod(context.Background(), "oom-pod")
	require.NoError(t, err)
	assert.Equal(t, "oom-pod", pod)
	assert.Equal(t, 5, h.exec.Count("kubectl get pods -o name"))
	assert.Equal(t, []time.Duration{5 * time.Second, 2 * time.Second, 2 * time.Second, 2 * time.Second, 2 * time.Second}, h.sleeps)
}

func TestFindPodExhausted(t *testing.T) {
	h := newHarness("")
	h.exec.OnOutput("kubectl get pods -o name", "pod/other")

	_, err := h.runner.FindPod(context.Background(), "oom-pod")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPodNotFound))
	assert.Equal(t, 5, h.exec.Count("kubectl get pods -o name"))
}

func TestRunScenarioPodNotFoundSkipsToCleanup(t *testing.T) {
	h := newHarness("")
	h.exec.OnOutput("kubectl get pods -o name", "")

	res := h.runner.RunScenario(context.Background(), cpuScenario)

	assert.Equal(t, "skipped", res.Outcome())
	assert.Contains(t, res.Skipped, "high-cpu-app-")
	assert.Equal(t, "Identifying", res.LastState)
	assert.Empty(t, res.Pod)
	assert.Nil(t, res.Context)
	assert.Empty(t, h.llm.prompts)
	assert.Equal(t, 1, h.exec.Count(cpuDeleteCmd))
	assert.Equal(t, 1, h.pauses)
}

func TestRunScenarioApplyFailureStillCleansUp(t *testing.T) {
	h := newHarness("")
	h.exec.On("kubectl apply -f scenarios/1_insufficient_cpu.yaml", executortest.Response{Fail: true, Stderr: "error: unable to recognize"})

	res := h.runner.RunScenario(context.Background(), cpuScenario)

	assert.Equal(t, "error", res.Outcome())
	assert.Contains(t, res.Error, "applying manifest")
	assert.Contains(t, res.Error, "unable to recognize")
	assert.Equal(t, "Applied", res.LastState)
	assert.Equal(t, 0, h.exec.Count("kubectl get pods -o name"))
	assert.Equal(t, 1, h.exec.Count(cpuDeleteCmd))
	assert.Contains(t, h.sink.titles(), "Scenario Error")
}

func TestRunScenarioMissingManifest(t *testing.T) {
	h := newHarness("")
	s := cpuScenario
	s.Manifest = "missing.yaml"

	res := h.runner.RunScenario(context.Background(), s)

	assert.Contains(t, res.Error, "reading manifest missing.yaml")
	assert.Equal(t, []string{cpuDeleteCmd}, h.exec.Commands())
}

func TestRunScenarioRequiresNode(t *testing.T) {
	t.Run("skipped without node", func(t *testing.T) {
		h := newHarness("")
		res := h.runner.RunScenario(context.Background(), taintScenario)

		assert.Equal(t, "skipped", res.Outcome())
		assert.Equal(t, "Setup", res.LastState)
		assert.Empty(t, h.exec.Calls())
		assert.Zero(t, h.pauses)
	})

	t.Run("taints and untaints the node", func(t *testing.T) {
		h := newHarness("worker-1")
		h.exec.OnOutput("kubectl get pods -o name", "pod/app-needs-toleration")
		h.exec.OnOutput("kubectl get pod app-needs-toleration", "app-needs-toleration   0/1   Pending")
		h.runner.RunScenario(context.Background(), taintScenario)

		calls := h.exec.Calls()
		require.NotEmpty(t, calls)
		assert.Equal(t, "kubectl taint nodes worker-1 special-workload=true:NoSchedule", calls[0].Command)
		assert.False(t, calls[0].Tolerate)
		last := calls[len(calls)-1]
		assert.Equal(t, "kubectl taint nodes worker-1 special-workload=true:NoSchedule-", last.Command)
		assert.True(t, last.Tolerate)
		assert.Equal(t, "kubectl delete pod app-needs-toleration --grace-period=0 --force", calls[len(calls)-2].Command)
	})

	t.Run("pre-run failure still untaints", func(t *testing.T) {
		h := newHarness("worker-1")
		h.exec.On("kubectl taint nodes worker-1 special-workload=true:NoSchedule", executortest.Response{Fail: true, Stderr: "forbidden"})
		res := h.runner.RunScenario(context.Background(), taintScenario)

		assert.Contains(t, res.Error, "pre-run command")
		assert.Equal(t, 1, h.exec.Count("kubectl taint nodes worker-1 special-workload=true:NoSchedule-"))
		assert.Equal(t, 0, h.exec.Count("kubectl apply -f scenarios/2_taint_toleration.yaml"))
	})
}

func TestRunScenarioModelFailureIsText(t *testing.T) {
	h := newHarness("")
	scriptInsufficientCPU(h.exec)
	h.llm.err = errors.New("dial tcp 10.0.0.1:443: i/o timeout")

	res := h.runner.RunScenario(context.Background(), cpuScenario)

	assert.Empty(t, res.Error)
	assert.False(t, res.Classification.Known())
	assert.Equal(t, []string{model.KeyPodDescription}, res.Context.Keys())
	assert.Equal(t, "API Request Error: dial tcp 10.0.0.1:443: i/o timeout", res.Diagnosis)
}

func TestRunScenarioNamespace(t *testing.T) {
	h := newHarness("")
	h.runner.Namespace = "chaos"
	h.exec.OnOutput("kubectl get pods -o name -n chaos", "pod/high-cpu-app-1")

	res := h.runner.RunScenario(context.Background(), cpuScenario)

	assert.Equal(t, "high-cpu-app-1", res.Pod)
	assert.Equal(t, 1, h.exec.Count("kubectl apply -f scenarios/1_insufficient_cpu.yaml -n chaos"))
	assert.Equal(t, 1, h.exec.Count(cpuDeleteCmd+" -n chaos"))
}

func TestRunScenarioKubeconfigFlags(t *testing.T) {
	h := newHarness("worker-1")
	exec := executor.WithKubectlFlags(h.exec, executor.KubeconfigFlags("/etc/kube/staging.yaml", "staging")...)
	h.runner.Executor = exec
	h.runner.Collector = collector.New(exec)

	const flags = "kubectl --kubeconfig=/etc/kube/staging.yaml --context=staging "
	h.exec.OnOutput(flags+"get pods -o name", "pod/app-needs-toleration")

	res := h.runner.RunScenario(context.Background(), taintScenario)

	assert.Equal(t, "app-needs-toleration", res.Pod)
	assert.Equal(t, 1, h.exec.Count(flags+"taint nodes worker-1 special-workload=true:NoSchedule"))
	assert.Equal(t, 1, h.exec.Count(flags+"apply -f scenarios/2_taint_toleration.yaml"))
	assert.Equal(t, 1, h.exec.Count(flags+"describe pod app-needs-toleration"))
	assert.Equal(t, 1, h.exec.Count(flags+"delete pod app-needs-toleration --grace-period=0 --force"))
	assert.Equal(t, 1, h.exec.Count(flags+"taint nodes worker-1 special-workload=true:NoSchedule-"))
	for _, cmd := range h.exec.Commands() {
		assert.Contains(t, cmd, flags)
	}
}

func TestRunScenarioInterruptedStillCleansUp(t *testing.T) {
	h := newHarness("worker-1")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.runner.Sleep = func(d time.Duration) {
		h.sleeps = append(h.sleeps, d)
		if d == testTiming.SettleDelay {
			cancel()
		}
	}

	results := h.runner.Run(ctx, []model.Scenario{taintScenario, cpuScenario})

	require.Len(t, results, 1)
	res := results[0]
	assert.Equal(t, "error", res.Outcome())
	assert.Contains(t, res.Error, "interrupted")
	assert.Equal(t, "Identifying", res.LastState)
	assert.Zero(t, h.exec.Count("kubectl get pods -o name"))
	assert.Empty(t, h.llm.prompts)
	assert.Zero(t, h.pauses)

	calls := h.exec.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, "kubectl delete pod app-needs-toleration --grace-period=0 --force", calls[2].Command)
	assert.False(t, calls[2].Canceled)
	assert.Equal(t, "kubectl taint nodes worker-1 special-workload=true:NoSchedule-", calls[3].Command)
	assert.False(t, calls[3].Canceled)
}

func TestFindPodStopsWhenCanceled(t *testing.T) {
	h := newHarness("")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.runner.FindPod(ctx, "oom-pod")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrPodNotFound))
	assert.Empty(t, h.exec.Calls())
}

func TestRunSequential(t *testing.T) {
	h := newHarness("")
	scriptInsufficientCPU(h.exec)

	results := h.runner.Run(context.Background(), []model.Scenario{cpuScenario, taintScenario})

	require.Len(t, results, 2)
	assert.Equal(t, "1_insufficient_cpu", results[0].ScenarioID)
	assert.Equal(t, "diagnosed", results[0].Outcome())
	assert.Equal(t, "2_taint_toleration", results[1].ScenarioID)
	assert.Equal(t, "skipped", results[1].Outcome())
	assert.Equal(t, 1, h.pauses)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "ContextCollection", StateContextCollection.String())
	assert.Equal(t, "Done", StateDone.String())
	assert.Equal(t, "Unknown", State(42).String())
}
