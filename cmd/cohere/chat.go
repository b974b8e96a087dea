package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/knoguchi/cohere/internal/cohere"
	"github.com/knoguchi/cohere/internal/history"
	"github.com/knoguchi/cohere/internal/stream"
)

type chatFlags struct {
	model       string
	preamble    string
	temperature float64
	maxTokens   int
	noStream    bool
	interactive bool
}

func newChatCmd(a *app) *cobra.Command {
	var f chatFlags

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Chat with a model, streaming the reply",
		Args: func(cmd *cobra.Command, args []string) error {
			if f.interactive {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.interactive {
				return a.chatInteractive(cmd, f)
			}
			req := f.apply(cmd, &cohere.ChatRequest{Message: strings.Join(args, " ")})
			_, err := a.chatOnce(cmd.Context(), req, f.noStream)
			return err
		},
	}

	cmd.Flags().StringVar(&f.model, "model", "", "Model to use (default command-r-plus)")
	cmd.Flags().StringVar(&f.preamble, "preamble", "", "Replace the default preamble")
	cmd.Flags().Float64Var(&f.temperature, "temperature", 0, "Sampling temperature")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", 0, "Maximum tokens to generate")
	cmd.Flags().BoolVar(&f.noStream, "no-stream", false, "Wait for the full reply instead of streaming")
	cmd.Flags().BoolVarP(&f.interactive, "interactive", "i", false, "Read messages from stdin and keep conversation history (/reset clears it)")

	return cmd
}

// apply copies the flag values onto req. Optional fields are only set when
// their flag was given.
func (f chatFlags) apply(cmd *cobra.Command, req *cohere.ChatRequest) *cohere.ChatRequest {
	req.Model = cohere.GenerateModel(f.model)
	req.Preamble = f.preamble
	if cmd.Flags().Changed("temperature") {
		req.Temperature = &f.temperature
	}
	if cmd.Flags().Changed("max-tokens") {
		req.MaxTokens = &f.maxTokens
	}
	return req
}

// chatOnce sends one message and writes the reply to stdout, returning the
// reply text.
func (a *app) chatOnce(ctx context.Context, req *cohere.ChatRequest, noStream bool) (string, error) {
	if noStream {
		resp, err := a.client.Chat(ctx, req)
		if err != nil {
			return "", err
		}
		fmt.Fprintln(a.out, resp.Text)
		return resp.Text, nil
	}

	s, err := a.client.ChatStream(ctx, req)
	if err != nil {
		return "", err
	}
	defer s.Close()

	var reply strings.Builder
	for ev, err := range s.All(ctx) {
		var decodeErr *stream.DecodeError
		if errors.As(err, &decodeErr) {
			a.logger.Warn("skipping chat stream record", "error", err)
			continue
		}
		if err != nil {
			fmt.Fprintln(a.out)
			return reply.String(), err
		}

		switch e := ev.(type) {
		case *stream.StreamStart:
			a.logger.Debug("chat stream started", "generation_id", e.GenerationID)
		case *stream.TextGeneration:
			reply.WriteString(e.Text)
			fmt.Fprint(a.out, e.Text)
		case *stream.StreamEnd:
			fmt.Fprintln(a.out)
			a.logger.Debug("chat stream ended",
				"finish_reason", e.FinishReason,
				"response_id", e.Response.ResponseID,
			)
			if e.Response.Text != "" {
				return e.Response.Text, nil
			}
		}
	}

	return reply.String(), nil
}

// resetCommand typed at the interactive prompt forgets the conversation.
const resetCommand = "/reset"

func (a *app) chatInteractive(cmd *cobra.Command, f chatFlags) error {
	store := history.NewStore(a.cfg.HistoryMaxMessages, a.cfg.HistoryTTL)
	defer store.Close()

	id := store.NewConversation()
	a.logger.Debug("started conversation", "conversation_id", id)

	scanner := bufio.NewScanner(a.in)
	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(a.out)
			return scanner.Err()
		}
		message := strings.TrimSpace(scanner.Text())
		switch message {
		case "":
			continue
		case resetCommand:
			store.Clear(id)
			id = store.NewConversation()
			a.logger.Debug("started conversation", "conversation_id", id)
			fmt.Fprintln(a.out, "history cleared")
			continue
		}

		req := f.apply(cmd, store.Request(id, message))

		reply, err := a.chatOnce(cmd.Context(), req, f.noStream)
		if err != nil {
			return err
		}
		store.AddTurn(id, message, reply)
	}
}
