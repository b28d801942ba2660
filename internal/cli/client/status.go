package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <document-id>",
		Short: "Show the indexing status of a document",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	documentID := args[0]

	apiClient, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := apiClient.Get("/documents/" + documentID)
	if err != nil {
		return err
	}

	var result struct {
		DocumentID string `json:"document_id"`
		Status     string `json:"status"`
		Reason     string `json:"reason,omitempty"`
		CreatedAt  string `json:"created_at"`
		UpdatedAt  string `json:"updated_at"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("Document ID: %s\n", result.DocumentID)
	fmt.Printf("Status:      %s\n", result.Status)
	if result.Reason != "" {
		fmt.Printf("Reason:      %s\n", result.Reason)
	}
	fmt.Printf("Created:     %s\n", result.CreatedAt)
	fmt.Printf("Updated:     %s\n", result.UpdatedAt)

	return nil
}
