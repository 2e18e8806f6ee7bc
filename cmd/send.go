package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ocppcs/app"
	"github.com/kilianp07/ocppcs/config"
	"github.com/kilianp07/ocppcs/core/chargepoint"
)

var (
	sendParams  string
	sendTimeout time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send <operation>",
	Short: "Send one operation and print the finished task",
	Args:  cobra.ExactArgs(1),
	RunE:  runSend,
}

var operationsCmd = &cobra.Command{
	Use:   "operations",
	Short: "List supported operations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, op := range chargepoint.Operations() {
			suffix := ""
			if op.Single {
				suffix = " (single charge point)"
			}
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", op.Name, suffix); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendParams, "params", "p", "", "JSON parameters, or @file to read them from a file")
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", time.Minute, "time to wait for every charge point")
	rootCmd.AddCommand(sendCmd, operationsCmd)
}

func readParams(raw string) ([]byte, error) {
	if len(raw) > 1 && raw[0] == '@' {
		return os.ReadFile(raw[1:])
	}
	if raw == "" {
		return nil, fmt.Errorf("--params is required")
	}
	return []byte(raw), nil
}

func runSend(cmd *cobra.Command, args []string) error {
	params, err := readParams(sendParams)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	svc.StartCollector(ctx)

	id, err := svc.Dispatcher.Execute(ctx, args[0], params)
	if err != nil {
		return err
	}
	waitCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	snap, err := svc.Wait(waitCtx, id, 50*time.Millisecond)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(snap); encErr != nil {
		return encErr
	}
	return err
}
