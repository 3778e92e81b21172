package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fstjohn-aops/ec2-instance-controls/internal/config"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/controls"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/provider"
	"github.com/fstjohn-aops/ec2-instance-controls/internal/provider/awsec2"
)

var (
	configFile string
	cfg        *config.Config
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "ec2-instance-controls",
	Short: "Control EC2 instance power state from chat commands",
	Long: `ec2-instance-controls lets authorized chat users query and change the
power state of EC2 instances, manage daily power schedules, temporarily
suspend those schedules, and track per-instance stakeholders. All state
lives in EC2 instance tags; the service keeps no database of its own.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newDispatcher initializes the AWS provider from config and wires the
// command dispatcher onto it.
func newDispatcher(ctx context.Context) (*controls.Dispatcher, error) {
	api, err := awsec2.New(ctx, awsec2.Options{
		Region:          cfg.AWS.Region,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize AWS provider: %w", err)
	}

	provider.Register("aws", api)

	return controls.NewDispatcher(api), nil
}
