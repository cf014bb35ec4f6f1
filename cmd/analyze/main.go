// Command analyze scores ticket messages given as arguments or, without
// arguments, one per line on stdin. Each verdict is printed as a JSON line.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spacesedan/sentiwatch/config"
	"github.com/spacesedan/sentiwatch/internal/app"
	"github.com/spacesedan/sentiwatch/internal/logging"
	"github.com/spacesedan/sentiwatch/internal/models"
	"github.com/spacesedan/sentiwatch/internal/processing"
	"github.com/spacesedan/sentiwatch/internal/sentiment"
)

type analyzer interface {
	Analyze(ctx context.Context, req processing.AnalyzeRequest) (models.TicketAnalysis, error)
}

type options struct {
	method  sentiment.Method
	summary bool
	save    bool
}

// result is one output line.
type result struct {
	Message          string            `json:"message"`
	LanguageDetected string            `json:"language_detected"`
	Translated       string            `json:"translated_message,omitempty"`
	Verdict          sentiment.Verdict `json:"verdict"`
	Keywords         []string          `json:"keywords"`
	TicketID         *int              `json:"ticket_id,omitempty"`
}

func main() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	method := fs.String("method", "", "analysis method: combined, vader or polarity (default from SENTIMENT_METHOD)")
	summary := fs.Bool("summary", false, "print a summary of all verdicts at the end")
	save := fs.Bool("save", false, "store every message as a ticket")
	verbose := fs.Bool("v", false, "log at the configured level instead of warnings only")
	_ = fs.Parse(os.Args[1:])

	config.LoadEnv(os.Getenv("APP_ENV"))
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(2)
	}

	level := "warn"
	if *verbose {
		level = cfg.LogLevel
	}
	slog.SetDefault(slog.New(logging.NewHandler(os.Stderr, level, cfg.LogFormat)))

	opts := options{summary: *summary, save: *save}
	if *method != "" {
		m, err := sentiment.ParseMethod(*method)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		opts.method = m
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer a.Close()

	if err := run(ctx, a.Pipeline(), fs.Args(), os.Stdin, os.Stdout, opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run analyzes args, or every non-blank line of in when args is empty, and
// writes one JSON line per message to out.
func run(ctx context.Context, an analyzer, args []string, in io.Reader, out io.Writer, opts options) error {
	enc := json.NewEncoder(out)
	var verdicts []sentiment.Verdict

	analyze := func(message string) error {
		if strings.TrimSpace(message) == "" {
			return nil
		}
		res, err := an.Analyze(ctx, processing.AnalyzeRequest{
			Message: message,
			Method:  opts.method,
			Save:    opts.save,
		})
		if err != nil {
			if errors.Is(err, processing.ErrEmptyMessage) {
				return nil
			}
			return err
		}
		verdicts = append(verdicts, res.Verdict)

		line := result{
			Message:          res.OriginalMessage,
			LanguageDetected: res.LanguageDetected,
			Verdict:          res.Verdict,
			Keywords:         res.Keywords,
		}
		if res.TranslatedMessage != res.OriginalMessage {
			line.Translated = res.TranslatedMessage
		}
		if res.Ticket != nil {
			id := res.Ticket.ID
			line.TicketID = &id
		}
		return enc.Encode(line)
	}

	if len(args) > 0 {
		for _, msg := range args {
			if err := analyze(msg); err != nil {
				return err
			}
		}
	} else {
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			if err := analyze(scanner.Text()); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read input: %w", err)
		}
	}

	if opts.summary {
		return enc.Encode(map[string]sentiment.Summary{"summary": sentiment.Summarize(verdicts)})
	}
	return nil
}
