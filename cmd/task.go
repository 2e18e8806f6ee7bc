package cmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	serverToken string
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Inspect tasks on a running server",
}

var taskGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Print a task snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetch(cmd, "/api/tasks/"+args[0])
	},
}

var taskLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List tasks",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return fetch(cmd, "/api/tasks")
	},
}

func init() {
	taskCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "API base URL")
	taskCmd.PersistentFlags().StringVar(&serverToken, "token", "", "API bearer token")
	taskCmd.AddCommand(taskGetCmd, taskLsCmd)
	rootCmd.AddCommand(taskCmd)
}

func fetch(cmd *cobra.Command, path string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(serverURL, "/")+path, nil)
	if err != nil {
		return err
	}
	if serverToken != "" {
		req.Header.Set("Authorization", "Bearer "+serverToken)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	_, err = cmd.OutOrStdout().Write(body)
	return err
}
