package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-analyzer/internal/adapter/repository"
	"github.com/johnquangdev/meeting-analyzer/internal/domain/entities"
	"github.com/johnquangdev/meeting-analyzer/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-analyzer/pkg/config"
	pkgjwt "github.com/johnquangdev/meeting-analyzer/pkg/jwt"
)

const demoTokenExpiry = 24 * time.Hour

func newSeedCommand(root *rootOptions) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create a demo meeting and print a token for calling the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Parse()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cfg.JWT.Secret == "" {
				return fmt.Errorf("JWT_SECRET is required")
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

			organizer := uuid.New()
			start := time.Now().Add(time.Hour).UTC().Truncate(time.Minute)
			meeting := &entities.Meeting{
				Title:       title,
				Objective:   "Agree on the release date and assign the remaining tasks",
				ScheduledAt: &start,
				Status:      entities.MeetingStatusScheduled,
				OrganizerID: organizer,
				Participants: []entities.Participant{
					{UserID: &organizer, Name: "Alice", Email: "alice@test.local"},
					{Name: "Bob", Email: "bob@test.local"},
					{Name: "Charlie", Email: "charlie@test.local"},
				},
				AgendaItems: []entities.AgendaItem{
					{OrderIndex: 1, Title: "Release status", DurationMinutes: 15, Context: "Open blockers from QA"},
					{OrderIndex: 2, Title: "Task assignment", DurationMinutes: 10},
				},
			}
			if err := repository.NewMeetingRepository(db).Create(cmd.Context(), meeting); err != nil {
				return fmt.Errorf("failed to create meeting: %w", err)
			}

			token, err := pkgjwt.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, demoTokenExpiry).
				GenerateAccessToken(organizer, "alice@test.local")
			if err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				[][]string{
					{"Meeting ID", meeting.ID.String()},
					{"Title", meeting.Title},
					{"Organizer", organizer.String()},
					{"Token expires", time.Now().Add(demoTokenExpiry).UTC().Format(time.RFC3339)},
				},
				nil,
			))
			fmt.Fprintf(cmd.OutOrStdout(), "Authorization: Bearer %s\n", token)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "Weekly release sync", "Demo meeting title")
	return cmd
}
