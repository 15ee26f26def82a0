package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulseobs/pulse/internal/core/config"
	"github.com/pulseobs/pulse/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current health status of a running agent",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	url := fmt.Sprintf("http://localhost:%d/health/detailed", cfg.Server.Port)

	resp, err := client.Get(url)
	if err != nil {
		slog.Error("Failed to reach agent", "url", url, "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var detailed struct {
		Current    domain.HealthCheck      `json:"current"`
		Connection domain.ConnectionStatus `json:"connection"`
		History    []domain.HealthCheck    `json:"history"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&detailed); err != nil {
		slog.Error("Failed to decode health response", "error", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "STATUS\tENV\tREMOTE\tSTORAGE\tCONNECTED\tCHECKS")
	_, _ = fmt.Fprintf(w, "%s\t%t\t%t\t%t\t%t\t%d\n",
		detailed.Current.Status,
		detailed.Current.Checks.Environment,
		detailed.Current.Checks.Remote,
		detailed.Current.Checks.Storage,
		detailed.Connection.Connected,
		len(detailed.History),
	)
	_ = w.Flush()

	for _, msg := range detailed.Current.Errors {
		fmt.Println("  -", msg)
	}
}
