package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/knoguchi/cohere/internal/cohere"
	"github.com/knoguchi/cohere/internal/textsplit"
)

func newCheckAPIKeyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check-api-key",
		Short: "Check that CO_API_KEY is valid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.CheckAPIKey(cmd.Context()); err != nil {
				return fmt.Errorf("CO_API_KEY is not valid: %w", err)
			}
			fmt.Fprintln(a.out, "CO_API_KEY is valid!")
			return nil
		},
	}
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		model          string
		maxTokens      int
		numGenerations int
		temperature    float64
	)

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Generate completions for a prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &cohere.GenerateRequest{
				Prompt: strings.Join(args, " "),
				Model:  cohere.GenerateModel(model),
			}
			if cmd.Flags().Changed("max-tokens") {
				req.MaxTokens = &maxTokens
			}
			if cmd.Flags().Changed("num-generations") {
				req.NumGenerations = &numGenerations
			}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &temperature
			}

			generations, err := a.client.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, g := range generations {
				fmt.Fprintln(a.out, g.Text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Model to use")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Maximum tokens to generate")
	cmd.Flags().IntVar(&numGenerations, "num-generations", 0, "Number of completions (1-5)")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature")

	return cmd
}

func newEmbedCmd(a *app) *cobra.Command {
	var (
		model    string
		truncate string
		file     string
		maxWords int
	)

	cmd := &cobra.Command{
		Use:   "embed [text]...",
		Short: "Embed texts and print the vectors as JSON",
		Long: "Embeds each argument, or with --file splits a document into sentence-aligned\n" +
			"pieces and embeds those. Inputs over the per-request limit are sent in batches.",
		Args: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			texts := args
			if file != "" {
				b, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("reading %s: %w", file, err)
				}
				texts = textsplit.New(maxWords).Split(string(b))
				if len(texts) == 0 {
					return fmt.Errorf("%s has no text to embed", file)
				}
				a.logger.Debug("split document", "file", file, "pieces", len(texts))
			}

			embeddings, err := a.client.EmbedBatch(cmd.Context(), &cohere.EmbedRequest{
				Model:    cohere.EmbedModel(model),
				Texts:    texts,
				Truncate: cohere.Truncate(strings.ToUpper(truncate)),
			})
			if err != nil {
				return err
			}

			if file == "" {
				return a.printJSON(embeddings)
			}

			type piece struct {
				Text      string    `json:"text"`
				Embedding []float64 `json:"embedding"`
			}
			out := make([]piece, len(texts))
			for i := range texts {
				out[i] = piece{Text: texts[i], Embedding: embeddings[i]}
			}
			return a.printJSON(out)
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Embedding model")
	cmd.Flags().StringVar(&truncate, "truncate", "", "Truncation mode (NONE, START, END)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Embed a document, split into pieces")
	cmd.Flags().IntVar(&maxWords, "max-words", textsplit.DefaultMaxWords, "Maximum words per piece with --file")

	return cmd
}

func newClassifyCmd(a *app) *cobra.Command {
	var examples []string

	cmd := &cobra.Command{
		Use:   "classify <input>...",
		Short: "Classify inputs from labelled examples",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &cohere.ClassifyRequest{Inputs: args}
			for _, e := range examples {
				label, text, ok := strings.Cut(e, "=")
				if !ok {
					return fmt.Errorf("invalid example %q: expected label=text", e)
				}
				req.Examples = append(req.Examples, cohere.ClassifyExample{Label: label, Text: text})
			}

			classifications, err := a.client.Classify(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, c := range classifications {
				fmt.Fprintf(a.out, "%s\t%.4f\t%s\n", c.Prediction, c.Confidence, c.Input)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&examples, "example", "e", nil, "Labelled example as label=text (repeatable)")

	return cmd
}

func newRerankCmd(a *app) *cobra.Command {
	var (
		query string
		model string
		topN  int
	)

	cmd := &cobra.Command{
		Use:   "rerank --query <query> <document>...",
		Short: "Order documents by relevance to a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := &cohere.RerankRequest{
				Query:     query,
				Documents: args,
				Model:     cohere.RerankModel(model),
			}
			if cmd.Flags().Changed("top-n") {
				req.TopN = &topN
			}

			results, err := a.client.Rerank(cmd.Context(), req)
			if err != nil {
				return err
			}
			for _, r := range results {
				fmt.Fprintf(a.out, "%.4f\t%s\n", r.RelevanceScore, args[r.Index])
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Search query")
	cmd.Flags().StringVar(&model, "model", "", "Rerank model")
	cmd.Flags().IntVar(&topN, "top-n", 0, "Number of results to return")
	cmd.MarkFlagRequired("query")

	return cmd
}

func newTokenizeCmd(a *app) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "tokenize <text>",
		Short: "Split text into tokens",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.client.Tokenize(cmd.Context(), &cohere.TokenizeRequest{
				Text:  strings.Join(args, " "),
				Model: cohere.GenerateModel(model),
			})
			if err != nil {
				return err
			}
			return a.printJSON(resp)
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Model whose tokenizer to use")

	return cmd
}

func newDetokenizeCmd(a *app) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "detokenize <token>...",
		Short: "Turn tokens back into text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens := make([]int64, len(args))
			for i, arg := range args {
				tok, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid token %q: %w", arg, err)
				}
				tokens[i] = tok
			}

			text, err := a.client.Detokenize(cmd.Context(), &cohere.DetokenizeRequest{
				Tokens: tokens,
				Model:  cohere.GenerateModel(model),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, text)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Model whose tokenizer to use")

	return cmd
}

func newDetectLanguageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "detect-language <text>...",
		Short: "Detect the language of each text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.client.DetectLanguage(cmd.Context(), &cohere.DetectLanguageRequest{Texts: args})
			if err != nil {
				return err
			}
			for i, r := range results {
				fmt.Fprintf(a.out, "%s\t%s\t%s\n", r.LanguageCode, r.LanguageName, args[i])
			}
			return nil
		},
	}
}

func newSummarizeCmd(a *app) *cobra.Command {
	var length, format, extractiveness, model string

	cmd := &cobra.Command{
		Use:   "summarize [text]",
		Short: "Summarize text given as an argument or on stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 && args[0] != "-" {
				text = args[0]
			} else {
				b, err := io.ReadAll(a.in)
				if err != nil {
					return fmt.Errorf("reading stdin: %w", err)
				}
				text = string(b)
			}

			summary, err := a.client.Summarize(cmd.Context(), &cohere.SummarizeRequest{
				Text:           text,
				Length:         cohere.SummarizeLength(length),
				Format:         cohere.SummarizeFormat(format),
				Extractiveness: cohere.SummarizeExtractiveness(extractiveness),
				Model:          cohere.GenerateModel(model),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&length, "length", "", "Summary length (short, medium, long, auto)")
	cmd.Flags().StringVar(&format, "format", "", "Summary format (paragraph, bullets, auto)")
	cmd.Flags().StringVar(&extractiveness, "extractiveness", "", "How much text is reused (low, medium, high, auto)")
	cmd.Flags().StringVar(&model, "model", "", "Model to use")

	return cmd
}
