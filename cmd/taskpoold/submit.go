package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

func newSubmitCmd() *cobra.Command {
	var url, pool, entry, argument string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit one task to a running taskpoold instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			var arg any
			if argument != "" {
				if err := json.Unmarshal([]byte(argument), &arg); err != nil {
					return fmt.Errorf("parsing --argument as JSON: %w", err)
				}
			}

			body, err := json.Marshal(map[string]any{"entry": entry, "argument": arg})
			if err != nil {
				return err
			}

			endpoint := fmt.Sprintf("%s/api/v1/pools/%s/submit", url, pool)
			resp, err := http.Post(endpoint, "application/json", bytes.NewReader(body))
			if err != nil {
				return fmt.Errorf("submitting task: %w", err)
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
	cmd.Flags().StringVar(&pool, "pool", "default", "pool name to submit to")
	cmd.Flags().StringVar(&entry, "entry", "echo", "registered entry name to invoke")
	cmd.Flags().StringVar(&argument, "argument", "", "task argument, as a JSON literal")

	return cmd
}
