package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"cnb.cool/zhiqiangwang/pkg/logx"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/controls"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/model"
)

var queryOutputType string

// queryInstancesCmd lists controllable instances.
var queryInstancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List controllable instances",
	Long:  `List all controllable, non-terminated EC2 instances in the configured region.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		dispatcher, err := newDispatcher(ctx)
		if err != nil {
			return err
		}

		out := dispatcher.List(ctx, controls.Caller{ID: "cli"})
		if out.Kind == controls.KindProviderError {
			return fmt.Errorf("failed to list instances")
		}

		printInstances(out.Instances)
		logx.Info("Query completed, count %d, region %s", len(out.Instances), cfg.AWS.Region)
		return nil
	},
}

// querySearchCmd runs the fuzzy search.
var querySearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search instances by ID or name",
	Long:  `Find controllable instances whose ID or name matches a term, best matches first.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		dispatcher, err := newDispatcher(ctx)
		if err != nil {
			return err
		}

		out := dispatcher.Search(ctx, controls.Caller{ID: "cli"}, args[0])
		if out.Kind == controls.KindProviderError {
			return fmt.Errorf("failed to search instances")
		}

		printInstances(out.Instances)
		return nil
	},
}

// printInstances renders instances as JSON or a table.
func printInstances(instances []*model.Instance) {
	if queryOutputType == "json" {
		data, _ := json.MarshalIndent(instances, "", "  ")
		fmt.Println(string(data))
		return
	}

	rows := [][]string{}
	for _, inst := range instances {
		rows = append(rows, []string{inst.ID, inst.Name, string(inst.State)})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		Headers("ID", "Name", "State").
		Rows(rows...)

	fmt.Println(t)
}

func init() {
	queryCmd.AddCommand(queryInstancesCmd)
	queryCmd.AddCommand(querySearchCmd)

	queryCmd.PersistentFlags().StringVarP(&queryOutputType, "output", "o", "table", "output format (table|json)")
}
