package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/helmcode/kubectl-ai-harness/pkg/executor"
	"github.com/helmcode/kubectl-ai-harness/pkg/model"
	"go.uber.org/zap"
)

// gatherFunc adds classification specific entries to the package being built.
type gatherFunc func(ctx context.Context, c *Collector, pod string, b *model.Builder)

// gatherers maps every known classification to its extra lookups.
var gatherers = map[model.Classification]gatherFunc{
	model.SchedulingFailure:     gatherNodes,
	model.ImagePullFailure:      gatherNothing,
	model.ConfigurationFailure:  gatherConfigMaps,
	model.InitializationFailure: gatherInitLogs,
	model.RuntimeCrash:          gatherContainerLogs,
	model.HealthCheckFailure:    gatherEndpoints,
}

// Collector gathers diagnostic context for a failing pod. All lookups are
// read-only and run in tolerant mode.
type Collector struct {
	exec      executor.Executor
	namespace string
	findInit  InitContainerFinder
	logger    *zap.Logger
}

// Option configures a Collector.
type Option func(*Collector)

// WithNamespace scopes every query to ns.
func WithNamespace(ns string) Option {
	return func(c *Collector) { c.namespace = ns }
}

// WithInitContainerFinder replaces the default describe-output parser.
func WithInitContainerFinder(f InitContainerFinder) Option {
	return func(c *Collector) { c.findInit = f }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Collector) { c.logger = l }
}

func New(exec executor.Executor, opts ...Option) *Collector {
	c := &Collector{
		exec:     exec,
		findInit: FirstInitContainer,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Collect builds the context package for pod. The pod description is always
// present; an unknown classification adds nothing else.
func (c *Collector) Collect(ctx context.Context, pod string, classification model.Classification) *model.ContextPackage {
	b := model.NewBuilder()
	b.Set(model.KeyPodDescription, c.query(ctx, fmt.Sprintf("kubectl describe pod %s", pod)))

	gather, ok := gatherers[classification]
	if !ok {
		c.logger.Info("no extra context for classification", zap.String("classification", classification.String()))
		return b.Build()
	}
	gather(ctx, c, pod, b)
	return b.Build()
}

// query runs command in tolerant mode. An executor error is logged and turns
// into empty text.
func (c *Collector) query(ctx context.Context, command string) string {
	if c.namespace != "" {
		command += " -n " + c.namespace
	}
	out, err := c.exec.Run(ctx, command, true)
	if err != nil {
		c.logger.Warn("diagnostic lookup failed", zap.String("command", command), zap.Error(err))
		return ""
	}
	return out
}

func gatherNothing(context.Context, *Collector, string, *model.Builder) {}

func gatherNodes(ctx context.Context, c *Collector, _ string, b *model.Builder) {
	b.Set(model.KeyNodeDescriptions, c.query(ctx, "kubectl describe nodes"))
}

func gatherConfigMaps(ctx context.Context, c *Collector, _ string, b *model.Builder) {
	b.Set(model.KeyConfigMaps, c.query(ctx, "kubectl get configmaps"))
}

func gatherInitLogs(ctx context.Context, c *Collector, pod string, b *model.Builder) {
	name := c.findInit(b.Get(model.KeyPodDescription))
	if name == "" {
		c.logger.Info("no init container found in pod description", zap.String("pod", pod))
		return
	}
	b.Set(model.KeyInitLogs, c.query(ctx, fmt.Sprintf("kubectl logs %s -c %s --previous", pod, name)))
}

func gatherContainerLogs(ctx context.Context, c *Collector, pod string, b *model.Builder) {
	b.Set(model.KeyContainerLogs, c.query(ctx, fmt.Sprintf("kubectl logs %s --previous", pod)))
}

func gatherEndpoints(ctx context.Context, c *Collector, pod string, b *model.Builder) {
	b.Set(model.KeyEndpoints, c.query(ctx, fmt.Sprintf("kubectl get endpoints -l %s", AppSelector(pod))))
}

// AppSelector derives the app label selector of the service fronting pod.
func AppSelector(pod string) string {
	app := strings.ReplaceAll(pod, "-pod", "")
	app = strings.ReplaceAll(app, "bad-readiness-", "bad-readiness")
	return "app=" + app
}

// ExpectedKeys lists the keys Collect produces for a classification when
// every lookup finds what it needs.
func ExpectedKeys(classification model.Classification) []string {
	keys := []string{model.KeyPodDescription}
	switch classification {
	case model.SchedulingFailure:
		keys = append(keys, model.KeyNodeDescriptions)
	case model.ConfigurationFailure:
		keys = append(keys, model.KeyConfigMaps)
	case model.InitializationFailure:
		keys = append(keys, model.KeyInitLogs)
	case model.RuntimeCrash:
		keys = append(keys, model.KeyContainerLogs)
	case model.HealthCheckFailure:
		keys = append(keys, model.KeyEndpoints)
	}
	return keys
}
