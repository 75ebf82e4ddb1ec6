// Command llmctl is the operational CLI for the inference service: it
// probes provider availability and runs one-shot generation calls against
// the configured primary/fallback pair.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/trooth/llm-service/internal/config"
	"github.com/trooth/llm-service/internal/llm"
	"github.com/trooth/llm-service/internal/platform/logger"
	"github.com/trooth/llm-service/internal/service"
)

var (
	providerFlag string
	modelFlag    string
	noFallback   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "llmctl",
		Short: "Operate the generative-model inference service",
		Long: `llmctl drives the provider-agnostic inference service from the command
line: check which vendors are currently available, or send a single
(system prompt, user content) pair and inspect the structured result
with its latency, token, and cost accounting.`,
	}

	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "primary provider (gemini or openai)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "model override for the primary provider")
	rootCmd.PersistentFlags().BoolVar(&noFallback, "no-fallback", false, "disable the fallback provider")

	rootCmd.AddCommand(providersCmd())
	rootCmd.AddCommand(generateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildService loads configuration, wires logging, and constructs a Service
// honoring the persistent flags.
func buildService() (*service.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Log)

	var opts []service.Option
	if providerFlag != "" {
		opts = append(opts, service.WithProvider(providerFlag))
	}
	if modelFlag != "" {
		opts = append(opts, service.WithModel(modelFlag))
	}
	if noFallback {
		opts = append(opts, service.WithFallback(false))
	}

	return service.New(cfg.LLM, log, opts...)
}

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Show availability of every registered provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService()
			if err != nil {
				return err
			}

			status := svc.GetAvailableProviders(cmd.Context())

			names := make([]string, 0, len(status))
			for name := range status {
				names = append(names, name)
			}
			sort.Strings(names)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tAVAILABLE")
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%t\n", name, status[name])
			}
			return w.Flush()
		},
	}
}

func generateCmd() *cobra.Command {
	var (
		systemPrompt string
		temperature  float64
		maxTokens    int
		maxRetries   int
		plainText    bool
	)

	cmd := &cobra.Command{
		Use:   "generate [user content]",
		Short: "Run one generation call and print the full response",
		Long: `Sends the given user content (with an optional system prompt) to the
configured primary provider, falling back to the secondary provider on
failure unless --no-fallback is set. The full response record — parsed
content, raw text, latency, token usage, and estimated cost — is printed
as JSON.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := buildService()
			if err != nil {
				return err
			}

			cfg := llm.DefaultConfig()
			cfg.Temperature = temperature
			cfg.MaxTokens = maxTokens
			cfg.MaxRetries = maxRetries
			cfg.JSONMode = !plainText

			resp := svc.Generate(cmd.Context(), systemPrompt, args[0], cfg)

			out, err := json.MarshalIndent(resp, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal response: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if !resp.Success {
				return fmt.Errorf("generation failed: %s", resp.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&systemPrompt, "system", "", "system prompt")
	cmd.Flags().Float64Var(&temperature, "temperature", llm.DefaultTemperature, "sampling temperature")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", llm.DefaultMaxTokens, "output token cap")
	cmd.Flags().IntVar(&maxRetries, "retries", llm.DefaultMaxRetries, "attempt budget for the raw vendor call")
	cmd.Flags().BoolVar(&plainText, "plain", false, "skip JSON response mode")

	return cmd
}
