package client

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// IngestCmd returns the ingest command
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest a text file as a document",
		Long:  "Read a UTF-8 text file, upload it to the server, and index it for question answering",
		Args:  cobra.ExactArgs(1),
		RunE:  runIngest,
	}

	cmd.Flags().StringP("document-id", "d", "", "Document ID to assign (server generates one if empty)")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]

	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	documentID, _ := cmd.Flags().GetString("document-id")

	apiClient, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	reqBody := map[string]interface{}{
		"text": string(text),
	}
	if documentID != "" {
		reqBody["document_id"] = documentID
	}

	resp, err := apiClient.Post("/documents", reqBody)
	if err != nil {
		return err
	}

	var result struct {
		DocumentID string `json:"document_id"`
		Status     string `json:"status"`
		ChunkCount int    `json:"chunk_count"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Printf("Document ID: %s\n", result.DocumentID)
	fmt.Printf("Status:      %s\n", result.Status)
	fmt.Printf("Chunks:      %d\n", result.ChunkCount)

	return nil
}
