package executor

import (
	"context"
	"strings"
)

// kubectlExecutor inserts global flags after the leading "kubectl" of every
// command it forwards.
type kubectlExecutor struct {
	next  Executor
	flags string
}

// WithKubectlFlags wraps next so that every kubectl command also carries
// flags. Other commands pass through unchanged. With no flags next is
// returned as is.
func WithKubectlFlags(next Executor, flags ...string) Executor {
	if len(flags) == 0 {
		return next
	}
	return &kubectlExecutor{next: next, flags: strings.Join(flags, " ")}
}

func (k *kubectlExecutor) Run(ctx context.Context, command string, tolerate bool) (string, error) {
	if rest, ok := strings.CutPrefix(command, "kubectl "); ok {
		command = "kubectl " + k.flags + " " + rest
	}
	return k.next.Run(ctx, command, tolerate)
}

// KubeconfigFlags returns the kubectl flags selecting a kubeconfig file and
// context. Empty values are left out so kubectl keeps its own defaults.
func KubeconfigFlags(kubeconfig, kubeContext string) []string {
	var flags []string
	if kubeconfig != "" {
		flags = append(flags, "--kubeconfig="+Quote(kubeconfig))
	}
	if kubeContext != "" {
		flags = append(flags, "--context="+Quote(kubeContext))
	}
	return flags
}

// Quote returns s as a single shell word.
func Quote(s string) string {
	if s != "" && strings.IndexFunc(s, unsafeShellRune) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func unsafeShellRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("-_./:=@+,", r):
		return false
	}
	return true
}
