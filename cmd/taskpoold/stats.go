package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

func newStatsCmd() *cobra.Command {
	var url, pool string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a running taskpoold instance's stats snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint := fmt.Sprintf("%s/api/v1/pools/%s/stats", url, pool)
			resp, err := http.Get(endpoint)
			if err != nil {
				return fmt.Errorf("fetching stats: %w", err)
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "http://localhost:8080", "base URL of a running taskpoold")
	cmd.Flags().StringVar(&pool, "pool", "default", "pool name to query")

	return cmd
}
