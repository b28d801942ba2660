package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// AskCmd returns the ask command
func AskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <document-id> <question>",
		Short: "Ask a question about an ingested document",
		Long:  "Send a question to the server and print the grounded answer with its cited sources",
		Args:  cobra.ExactArgs(2),
		RunE:  runAsk,
	}

	cmd.Flags().IntP("top-k", "k", 0, "Number of chunks to retrieve (0 uses the server default)")
	cmd.Flags().Float32("temperature", 0, "Sampling temperature (0 uses the server default)")
	cmd.Flags().Bool("sources", false, "Print retrieved source snippets")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	documentID := args[0]
	question := args[1]

	apiClient, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	reqBody := map[string]interface{}{
		"query": question,
	}
	if topK, _ := cmd.Flags().GetInt("top-k"); cmd.Flags().Changed("top-k") {
		reqBody["top_k"] = topK
	}
	if temp, _ := cmd.Flags().GetFloat32("temperature"); cmd.Flags().Changed("temperature") {
		reqBody["temperature"] = temp
	}

	resp, err := apiClient.Post("/documents/"+documentID+"/answer", reqBody)
	if err != nil {
		return err
	}

	var result struct {
		Answer  string `json:"answer"`
		Sources []struct {
			Snippet    string  `json:"snippet"`
			Score      float64 `json:"score"`
			ChunkIndex int     `json:"chunk_index"`
		} `json:"sources"`
		UsedTopK int    `json:"used_top_k"`
		Model    string `json:"model"`
	}
	if err := json.Unmarshal(resp.Data, &result); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	fmt.Println(result.Answer)

	showSources, _ := cmd.Flags().GetBool("sources")
	if showSources && len(result.Sources) > 0 {
		fmt.Println()
		fmt.Printf("Sources (%s, top_k=%d):\n", result.Model, result.UsedTopK)
		for i, src := range result.Sources {
			fmt.Printf("  [S%d] chunk %d (score %.4f): %s\n", i+1, src.ChunkIndex, src.Score, src.Snippet)
		}
	}

	return nil
}
