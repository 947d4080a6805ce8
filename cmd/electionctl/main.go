package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL    string
	adminToken string
	timeout    time.Duration
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "electionctl",
		Short: "Administrative control for a running ballotchain service",
		Long: `Electionctl drives the admin API of a ballotchain instance:
pausing and resuming voting, setting the cycle deadline, rolling the
election into a new cycle, and inspecting status and offset snapshots.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ballotchain API")
	rootCmd.PersistentFlags().StringVar(&adminToken, "token", os.Getenv("ADMIN_TOKEN"), "Admin token (defaults to ADMIN_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show the current cycle and whether voting is allowed",
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(http.MethodGet, "/admin/election/status", nil)
			},
		},
		&cobra.Command{
			Use:   "pause",
			Short: "Pause voting for the current cycle",
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(http.MethodPost, "/admin/election/pause", nil)
			},
		},
		&cobra.Command{
			Use:   "resume",
			Short: "Resume voting for the current cycle",
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(http.MethodPost, "/admin/election/resume", nil)
			},
		},
		&cobra.Command{
			Use:   "deadline <rfc3339-timestamp>",
			Short: "Set the voting deadline for the current cycle",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := time.Parse(time.RFC3339, args[0]); err != nil {
					return fmt.Errorf("deadline must be RFC 3339, e.g. 2026-09-01T18:00:00Z: %w", err)
				}
				return call(http.MethodPost, "/admin/election/deadline", map[string]string{"deadline": args[0]})
			},
		},
		&cobra.Command{
			Use:   "start-new-cycle",
			Short: "Snapshot current tallies and advance to a new cycle",
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(http.MethodPost, "/admin/election/start-new-cycle", nil)
			},
		},
		&cobra.Command{
			Use:   "offsets <cycle-id>",
			Short: "Show the offset snapshot recorded for a cycle",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return call(http.MethodGet, "/admin/election/cycles/"+args[0]+"/offsets", nil)
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func call(method string, path string, body any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("X-Admin-Token", adminToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err != nil {
		pretty.Write(payload)
	}
	fmt.Println(pretty.String())

	if resp.StatusCode >= 400 {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return nil
}
