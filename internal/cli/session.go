package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"quiz-runner-service/internal/config"
	"quiz-runner-service/internal/domain"
	pgstore "quiz-runner-service/internal/infra/postgres"
)

// NewCreateSessionCmd opens a new administered session for a content and
// prints its invite link.
func NewCreateSessionCmd(configPath *string) *cobra.Command {
	var contentID, name string

	cmd := &cobra.Command{
		Use:   "create-session",
		Short: "Create an administered session and print its invite link",
		RunE: func(cmd *cobra.Command, args []string) error {
			if contentID == "" {
				return fmt.Errorf("--content is required")
			}
			return createSession(cmd.Context(), *configPath, contentID, name)
		},
	}
	cmd.Flags().StringVar(&contentID, "content", "", "content id to administer")
	cmd.Flags().StringVar(&name, "name", "", "session display name")
	return cmd
}

func createSession(ctx context.Context, configPath, contentID, name string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	id := uuid.NewString()
	info := domain.SessionInfo{
		ID:         id,
		Name:       name,
		ContentID:  contentID,
		InviteLink: inviteLink(cfg.Invite.BaseURL, id),
	}
	if err := pgstore.NewSessionStore(pool).CreateSession(ctx, info); err != nil {
		return err
	}

	fmt.Printf("session %s created\ninvite: %s\n", info.ID, info.InviteLink)
	return nil
}

func inviteLink(baseURL, sessionID string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = "http://localhost:3000"
	}
	return base + "/join/" + sessionID
}
