package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-analyzer/internal/usecase/analysis"
	"github.com/johnquangdev/meeting-analyzer/pkg/config"
)

type analyzeOptions struct {
	meetingID string
	title     string
	file      string
	text      string
}

func newAnalyzeCommand(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a transcript once and print the result",
		Example: "  meeting-analyzer analyze --meeting-id 7c9e6679-7425-40de-944b-e07fc1f90ae7 --file notes.pdf\n" +
			"  meeting-analyzer analyze --title \"Weekly sync\" --text \"Alice will deploy on Friday.\"",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.file == "" && strings.TrimSpace(opts.text) == "" {
				return fmt.Errorf("either --file or --text is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger := zap.NewNop()
			if root.verbose {
				if logger, err = newLogger(false, true); err != nil {
					return err
				}
			}
			defer logger.Sync()

			db, err := database.Open(cfg, logger)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			p, err := newPipeline(cmd.Context(), cfg, db, logger, nil)
			if err != nil {
				return err
			}
			defer p.Close()

			in := analysis.Input{
				MeetingID:    opts.meetingID,
				MeetingTitle: opts.title,
				UploadedBy:   uuid.Nil,
				Text:         opts.text,
			}
			if opts.file != "" {
				f, err := os.Open(opts.file)
				if err != nil {
					return fmt.Errorf("failed to open transcript: %w", err)
				}
				defer f.Close()
				in.File = &analysis.Artifact{
					FileName: filepath.Base(opts.file),
					MIMEType: analysis.ResolveMIMEType("", opts.file),
					Content:  f,
				}
			}

			outcome, err := p.service.Analyze(cmd.Context(), in)
			if err != nil {
				return err
			}
			printAnalysis(cmd.OutOrStdout(), outcome)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.meetingID, "meeting-id", "", "Stored meeting to analyze and update")
	cmd.Flags().StringVar(&opts.title, "title", "", "Meeting title when no stored meeting is used")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Transcript file (.txt or .pdf)")
	cmd.Flags().StringVar(&opts.text, "text", "", "Transcript text")
	return cmd
}

func printAnalysis(w io.Writer, outcome *analysis.Outcome) {
	r := outcome.Result
	score := strconv.FormatFloat(r.ProductivityScore, 'f', 1, 64)
	if r.ScoreClamped {
		score += " (clamped)"
	}

	fmt.Fprintln(w, renderTable(
		[]string{"Field", "Value"},
		[][]string{
			{"Score", score},
			{"Summary", r.Summary},
			{"Agenda adherence", r.AgendaAdherence},
			{"Recommendations", r.Recommendations},
			{"Model", r.ModelUsed},
			{"Stored", strconv.FormatBool(outcome.Persisted)},
		},
		nil,
	))

	if len(r.Decisions) > 0 {
		rows := make([][]string, 0, len(r.Decisions))
		for _, d := range r.Decisions {
			rows = append(rows, []string{d.Decision, d.Responsible})
		}
		fmt.Fprintln(w, renderTable([]string{"Decision", "Responsible"}, rows, nil))
	}
	if len(r.ActionItems) > 0 {
		rows := make([][]string, 0, len(r.ActionItems))
		for _, a := range r.ActionItems {
			rows = append(rows, []string{a.Task, a.Responsible, string(a.Priority)})
		}
		fmt.Fprintln(w, renderTable([]string{"Action item", "Responsible", "Priority"}, rows, nil))
	}
	if len(r.ParticipantAnalysis) > 0 {
		rows := make([][]string, 0, len(r.ParticipantAnalysis))
		for _, p := range r.ParticipantAnalysis {
			rows = append(rows, []string{p.Name, string(p.ParticipationLevel), p.KeyContributions})
		}
		fmt.Fprintln(w, renderTable([]string{"Participant", "Level", "Contributions"}, rows, nil))
	}
}
