package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/clusterexec/internal/capacity"
	"github.com/Iron-Ham/clusterexec/internal/config"
	"github.com/Iron-Ham/clusterexec/internal/coordinator"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show where overseers would be placed",
	Long: `Plan surveys the configured cluster the same way run does and prints
the overseer placement the capacity planner would choose, without spawning
anything.

Each node gets max(0, processors - reserved - workers/2) overseers, where
reserved is coordinator.local_reserved_processors on the local node and
coordinator.remote_reserved_processors elsewhere.`,
	RunE: runPlan,
}

var planOutput string

func init() {
	planCmd.Flags().StringVarP(&planOutput, "output", "o", "text", "output format (text, yaml)")
}

// planReport is the yaml form of a plan.
type planReport struct {
	Nodes     []capacity.NodeCapacity `yaml:"nodes"`
	Placement map[string]int          `yaml:"placement"`
	Total     int                     `yaml:"total"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if planOutput != "text" && planOutput != "yaml" {
		return fmt.Errorf("invalid output format %q: must be text or yaml", planOutput)
	}

	rt, err := newRuntime(cfg, nil, nil)
	if err != nil {
		return err
	}
	defer rt.Shutdown()

	// Run counts the attached coordinator as a worker on the local node,
	// so the survey does too.
	addr, _, err := rt.Attach(coordinator.Role)
	if err != nil {
		return err
	}
	nodes := capacity.Survey(rt)
	rt.Detach(addr)

	planner := newPlanner(cfg)
	placement := planner.Plan(nodes)

	if planOutput == "yaml" {
		return writePlanYAML(cmd.OutOrStdout(), nodes, placement)
	}
	printPlan(cmd.OutOrStdout(), planner, nodes, placement)
	return nil
}

func writePlanYAML(w io.Writer, nodes []capacity.NodeCapacity, placement capacity.Placement) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(planReport{Nodes: nodes, Placement: placement.PerNode(), Total: len(placement)}); err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return enc.Close()
}

func printPlan(w io.Writer, planner *capacity.Planner, nodes []capacity.NodeCapacity, placement capacity.Placement) {
	header := fmt.Sprintf("%-6s %-10s %-8s %-9s %s", "NODE", "PROCESSORS", "WORKERS", "RESERVED", "OVERSEERS")
	lines := []string{titleStyle.Render("Capacity plan"), mutedStyle.Render(header)}

	for _, n := range nodes {
		name := n.Node.String()
		if n.Local {
			name += "*"
		}
		slots := fmt.Sprintf("%d", placement.Count(n.Node))
		if placement.Count(n.Node) == 0 {
			slots = warningStyle.Render(slots)
		} else {
			slots = successStyle.Render(slots)
		}
		lines = append(lines, fmt.Sprintf("%-6s %-10d %-8d %-9d %s",
			name, n.Processors, n.Workers, planner.Reserved(n.Local), slots))
	}

	lines = append(lines, "",
		row("Total", fmt.Sprint(len(placement))),
		mutedStyle.Render("* local node"),
	)
	fmt.Fprintln(w, boxStyle.Render(strings.Join(lines, "\n")))
	if len(placement) == 0 {
		fmt.Fprintln(w, warningStyle.Render("No spare capacity: run would have no overseers."))
	}
}
