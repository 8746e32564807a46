package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/clubchat-core/server/internal/agent/commit"
	"github.com/clubchat-core/server/internal/agent/dialogue"
	"github.com/clubchat-core/server/internal/agent/enrich"
	"github.com/clubchat-core/server/internal/agent/fields"
	"github.com/clubchat-core/server/internal/agent/model"
	"github.com/clubchat-core/server/internal/agent/repo"
	"github.com/clubchat-core/server/internal/agent/sanitize"
	logx "github.com/clubchat-core/server/pkg/logger"
)

var (
	appCfg    *AppConfig
	sessionID string
	userID    string
)

var rootCmd = &cobra.Command{
	Use:          "clubbot",
	Short:        "Conversational club registration",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logx.Init(logx.LoggerOpts{Environment: cfg.Environment()})
		appCfg = cfg
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Create a club in an interactive chat",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeFn, err := buildEngine(cmd.Context(), appCfg)
		if err != nil {
			return err
		}
		defer closeFn()
		if sessionID == "" {
			sessionID = uuid.NewString()
		}
		return runChat(cmd.Context(), engine, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

var turnCmd = &cobra.Command{
	Use:   "turn",
	Short: "Process one JSON turn read from stdin",
	Long: `Reads {"session_id": "...", "message": "...", "user_id": "..."} from stdin
and writes the reply as JSON to stdout. A missing session_id is generated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, closeFn, err := buildEngine(cmd.Context(), appCfg)
		if err != nil {
			return err
		}
		defer closeFn()

		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read request: %w", err)
		}
		out := engine.HandleJSON(cmd.Context(), raw)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		return enc.Encode(out)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the club tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := appCfg.Database.New()
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if err := repo.AutoMigrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		logx.Info().Str("dsn", appCfg.Database.DSN).Msg("club tables migrated")
		return nil
	},
}

func init() {
	chatCmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session id to resume (default: new session)")
	chatCmd.Flags().StringVarP(&userID, "user", "u", "", "User id recorded as the club owner")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(turnCmd)
	rootCmd.AddCommand(migrateCmd)
}

// buildEngine wires the stores, the commit service and the optional
// suggester. The returned func releases the connections.
func buildEngine(ctx context.Context, cfg *AppConfig) (*dialogue.Engine, func(), error) {
	rdb, err := cfg.Redis.New()
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	db, err := cfg.Database.New()
	if err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	closeFn := func() {
		_ = rdb.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	catalog := fields.NewCatalog()
	validator := fields.NewValidator(catalog)
	clubs := repo.NewGormClubRepository(db)
	deps := dialogue.Deps{
		Sessions:  repo.NewRedisSessionRepository(rdb, cfg.Session.KeyPrefix),
		Clubs:     clubs,
		Validator: validator,
		Committer: commit.NewService(clubs, validator),
		Sanitizer: sanitize.New(cfg.MaxMessageLength),
	}

	if cfg.Enrichment.Enabled && cfg.Dialogue.Profile == model.ProfileRich {
		if s, err := buildSuggester(ctx, cfg, catalog); err != nil {
			logx.Warn().Err(err).Msg("enrichment disabled")
		} else {
			deps.Enricher = s
		}
	}

	engine, err := dialogue.New(deps, dialogue.ConfigFrom(cfg.Dialogue, cfg.Session))
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	logx.Info().
		Str("profile", string(cfg.Dialogue.Profile)).
		Bool("enrichment", deps.Enricher != nil).
		Msg("dialogue engine ready")
	return engine, closeFn, nil
}

func buildSuggester(ctx context.Context, cfg *AppConfig, catalog *fields.Catalog) (*enrich.Suggester, error) {
	cm, err := enrich.NewGeminiChatModel(ctx, cfg.Enrichment)
	if err != nil {
		return nil, err
	}
	return enrich.NewSuggester(ctx, cm, enrich.Options{
		ModelName:      cfg.Enrichment.Model,
		Categories:     catalog.Names(),
		MaxSuggestions: cfg.Dialogue.MaxSuggestions,
		Timeout:        cfg.Enrichment.TimeoutDuration(),
	})
}

// runChat reads one message per line until EOF and prints each reply.
func runChat(ctx context.Context, engine *dialogue.Engine, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Session %s. Type \"cancel\" to stop, \"help\" for help.\n", sessionID)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		reply := engine.Handle(ctx, model.TurnInput{SessionID: sessionID, Message: line, UserID: userID})
		printReply(out, reply)
		if reply.Stage == model.StageDone.String() || reply.Stage == model.StageCancelled.String() {
			return nil
		}
	}
}

func printReply(out io.Writer, r model.TurnOutput) {
	progress := 0
	if r.Progress != nil {
		progress = *r.Progress
	}
	fmt.Fprintf(out, "[%s %d%%] %s\n", r.Stage, progress, html.UnescapeString(r.Message))
	for _, s := range r.Suggestions {
		fmt.Fprintf(out, "  * %s\n", html.UnescapeString(s))
	}
	if r.ClubID != "" {
		fmt.Fprintf(out, "club id: %s\n", r.ClubID)
	}
	if r.ErrorID != "" {
		fmt.Fprintf(out, "error id: %s\n", r.ErrorID)
	}
}
