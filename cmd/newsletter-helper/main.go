package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mikeboe/newsletter-helper/pkg/app"
	"github.com/mikeboe/newsletter-helper/pkg/config"
	"github.com/mikeboe/newsletter-helper/pkg/logging"
	"github.com/mikeboe/newsletter-helper/pkg/mcpserver"
	"github.com/mikeboe/newsletter-helper/pkg/newsletter"
)

var (
	topic        string
	style        string
	tone         string
	withResearch bool
	inPath       string
	outPath      string
	instruction  string
	mcpAddr      string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "newsletter-helper",
		Short:         "Research topics and write newsletters with Gemini",
		Long:          `newsletter-helper researches a topic with web-grounded Gemini calls, drafts a newsletter from the research and your saved notes, and revises it on instruction.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(researchCmd(), generateCmd(), editCmd(), notesCmd(), mcpCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("Command execution failed", "error", err)
		msg := newsletter.UserMessage(err)
		if errors.Is(err, config.ErrMissingAPIKey) {
			msg = err.Error()
		}
		fmt.Fprintln(os.Stderr, msg)
		stop()
		os.Exit(1)
	}
}

// setup loads configuration and builds the application. The API key is
// required for every command.
func setup(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	return app.New(ctx, cfg, logger, nil)
}

// prompt asks on stdout and reads one trimmed line from stdin.
func prompt(label string) string {
	fmt.Print(label)
	input, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(input)
}

// resolveTopic falls back to an interactive prompt when --topic was not given.
func resolveTopic(cmd *cobra.Command) (string, error) {
	if !cmd.Flags().Changed("topic") {
		topic = prompt("Enter newsletter topic: ")
	}
	if strings.TrimSpace(topic) == "" {
		return "", &newsletter.ValidationError{Field: "topic"}
	}
	return topic, nil
}

func writeOutput(content string) error {
	if outPath == "" || outPath == "-" {
		_, err := fmt.Fprintln(os.Stdout, content)
		return err
	}
	if err := os.WriteFile(outPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	slog.Info("Newsletter saved", "path", outPath)
	return nil
}

func readInput(path string) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(b), nil
}

func printResearch(w io.Writer, r *newsletter.ResearchResult) {
	fmt.Fprintln(w, r.Summary)
	if len(r.Sources) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	for i, s := range r.Sources {
		title := s.Title
		if title == "" {
			title = s.URI
		}
		fmt.Fprintf(w, "  %d. %s <%s>\n", i+1, title, s.URI)
	}
}

func researchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "research",
		Short: "Research a topic with Google Search grounding",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveTopic(cmd)
			if err != nil {
				return err
			}

			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := a.WithTimeout(cmd.Context())
			defer cancel()

			result, err := a.Studio.Research(ctx, t)
			if err != nil {
				return err
			}
			printResearch(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "The newsletter topic")
	return cmd
}

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Draft a newsletter from the topic, optional research and saved notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := resolveTopic(cmd)
			if err != nil {
				return err
			}

			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.Studio.SetOptions(newsletter.Options{
				Topic: t,
				Style: newsletter.Style(style),
				Tone:  newsletter.Tone(tone),
			}); err != nil {
				return err
			}

			if withResearch {
				ctx, cancel := a.WithTimeout(cmd.Context())
				_, err := a.Studio.Research(ctx, t)
				cancel()
				if err != nil {
					return err
				}
			}

			ctx, cancel := a.WithTimeout(cmd.Context())
			defer cancel()

			content, err := a.Studio.Generate(ctx)
			if err != nil {
				return err
			}
			return writeOutput(content)
		},
	}
	cmd.Flags().StringVarP(&topic, "topic", "t", "", "The newsletter topic")
	cmd.Flags().StringVarP(&style, "style", "s", string(newsletter.StyleInformative), "Writing style")
	cmd.Flags().StringVar(&tone, "tone", string(newsletter.ToneProfessional), "Tone of voice")
	cmd.Flags().BoolVarP(&withResearch, "with-research", "r", false, "Research the topic first and use the summary")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the newsletter to this file instead of stdout")
	return cmd
}

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Revise an existing newsletter according to an instruction",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(inPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("instruction") {
				instruction = prompt("Enter editing instruction: ")
			}

			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			a.Studio.SetContent(content)

			ctx, cancel := a.WithTimeout(cmd.Context())
			defer cancel()

			revised, err := a.Studio.Edit(ctx, instruction)
			if err != nil {
				return err
			}
			return writeOutput(revised)
		},
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "", "Newsletter file to edit (default: stdin)")
	cmd.Flags().StringVar(&instruction, "instruction", "", "What to change")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the revision to this file instead of stdout")
	return cmd
}

func notesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Show, replace or clear the saved personal notes",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the saved notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintln(cmd.OutOrStdout(), a.Studio.Snapshot().Notes)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set [text]",
		Short: "Replace the saved notes with the arguments, or stdin when none are given",
		RunE: func(cmd *cobra.Command, args []string) error {
			notes := strings.Join(args, " ")
			if len(args) == 0 {
				var err error
				if notes, err = readInput("-"); err != nil {
					return err
				}
			}

			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Studio.SetNotes(cmd.Context(), notes)
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved notes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			return a.Studio.ClearNotes(cmd.Context())
		},
	}

	cmd.AddCommand(show, set, clearCmd)
	return cmd
}

func mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Model Context Protocol server",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Expose research, generation and editing as MCP tools",
		Long:  `Serves over stdio by default. With --addr the streamable HTTP transport is used instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			srv, err := mcpserver.New(a.Researcher, a.Writer)
			if err != nil {
				return err
			}

			if mcpAddr != "" {
				a.Logger.Info("MCP server listening", "addr", mcpAddr)
				return srv.RunHTTP(cmd.Context(), mcpAddr)
			}
			err = srv.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	serve.Flags().StringVar(&mcpAddr, "addr", "", "Serve streamable HTTP on this address, e.g. :8082")

	cmd.AddCommand(serve)
	return cmd
}
