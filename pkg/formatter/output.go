package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/helmcode/kubectl-ai-harness/pkg/model"
	"gopkg.in/yaml.v3"
)

// DisplayReport writes the run summary in the requested format.
func DisplayReport(out io.Writer, results []model.Result, format string) error {
	switch format {
	case "json":
		return displayJSON(out, results)
	case "yaml":
		return displayYAML(out, results)
	case "human", "":
		displayHuman(out, results)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (supported: human, json, yaml)", format)
	}
}

func displayJSON(out io.Writer, results []model.Result) error {
	if results == nil {
		results = []model.Result{}
	}
	output, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(output))
	return nil
}

func displayYAML(out io.Writer, results []model.Result) error {
	output, err := yaml.Marshal(results)
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(output))
	return nil
}

func displayHuman(out io.Writer, results []model.Result) {
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(out)
	white.Fprintln(out, "📄 RUN SUMMARY")
	for i, r := range results {
		icon, c := outcomeStyle(r.Outcome())
		fmt.Fprintf(out, "   %d. %s %s\n", i+1, icon, r.ScenarioID)
		if r.Pod != "" {
			fmt.Fprintf(out, "      Pod: %s\n", r.Pod)
		}
		if r.Classification != "" {
			fmt.Fprintf(out, "      Classification: %s\n", c.Sprint(r.Classification))
		}
		switch {
		case r.Error != "":
			fmt.Fprintf(out, "      Error: %s\n", color.RedString(r.Error))
		case r.Skipped != "":
			fmt.Fprintf(out, "      Skipped: %s\n", color.YellowString(r.Skipped))
		}
		fmt.Fprintf(out, "      Took: %s\n", r.Duration.Round(time.Second))
	}

	fmt.Fprintln(out, strings.Repeat("─", 80))
	fmt.Fprintf(out, "💡 %s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func outcomeStyle(outcome string) (string, *color.Color) {
	switch outcome {
	case "error":
		return "🔴", color.New(color.FgRed)
	case "skipped":
		return "🟡", color.New(color.FgYellow)
	default:
		return "🟢", color.New(color.FgGreen)
	}
}
