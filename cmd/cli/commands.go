package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

var (
	metricFlag  string
	tierFlag    string
	regionFlag  string
	groupIDFlag string
	dryRunFlag  bool
)

func init() {
	leaderboardCmd.Flags().StringVar(&metricFlag, "metric", "current_rp", "Metric to rank by (current_rp, peak_rp, elo_rating)")
	leaderboardCmd.Flags().StringVar(&tierFlag, "tier", "", "Filter by tier")
	leaderboardCmd.Flags().StringVar(&regionFlag, "region", "", "Filter by region")
	standingsCmd.Flags().StringVar(&groupIDFlag, "group", "", "Group id to scope the standings to")
	decayCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Report what would decay without applying it")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(subjectsCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(tierCmd)
	rootCmd.AddCommand(decayCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var subjectsCmd = &cobra.Command{
	Use:   "subjects",
	Short: "List the subjects in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/subjects")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the matches in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the leaderboard for a metric",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		params.Set("metric", metricFlag)
		if tierFlag != "" {
			params.Set("tier", tierFlag)
		}
		if regionFlag != "" {
			params.Set("region", regionFlag)
		}
		return performGetRequest("/leaderboard?" + params.Encode())
	},
}

var standingsCmd = &cobra.Command{
	Use:   "standings",
	Short: "Show the standings for a group",
	RunE: func(cmd *cobra.Command, args []string) error {
		params := url.Values{}
		if groupIDFlag != "" {
			params.Set("groupID", groupIDFlag)
		}
		return performGetRequest("/standings?" + params.Encode())
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance [subjectID]",
	Short: "Show a subject's RP balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/balance?subjectID=" + url.QueryEscape(args[0]))
	},
}

var tierCmd = &cobra.Command{
	Use:   "tier [subjectID]",
	Short: "Show a subject's tier classification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/tier?subjectID=" + url.QueryEscape(args[0]))
	},
}

var decayCmd = &cobra.Command{
	Use:   "decay",
	Short: "Trigger a decay run",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/decay/run"
		if dryRunFlag {
			endpoint += "?dry_run=true"
		}
		return performGetRequest(endpoint)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
