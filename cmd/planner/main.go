package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vadimvoyevoda/ai-planner-sub000/internal/profile"
	"github.com/vadimvoyevoda/ai-planner-sub000/plugin/ai"
	"github.com/vadimvoyevoda/ai-planner-sub000/plugin/ai/note"
	"github.com/vadimvoyevoda/ai-planner-sub000/plugin/ical"
	"github.com/vadimvoyevoda/ai-planner-sub000/internal/observability"
	"github.com/vadimvoyevoda/ai-planner-sub000/server/runner/purge"
	"github.com/vadimvoyevoda/ai-planner-sub000/server/service/proposal"
	"github.com/vadimvoyevoda/ai-planner-sub000/store"
	"github.com/vadimvoyevoda/ai-planner-sub000/store/db"
)

var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "AI meeting planner",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := setup(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		runner := purge.NewRunner(env.store)
		if err := runner.Start(ctx); err != nil {
			return fmt.Errorf("failed to start purge runner: %w", err)
		}

		slog.Info("planner started",
			"version", version,
			"mode", env.profile.Mode,
			"driver", env.profile.Driver,
		)

		<-ctx.Done()
		runner.Stop()
		return nil
	},
}

var (
	proposeUser     int32
	proposeNote     string
	proposeLocation string
	proposeDuration int
	proposeSave     int
)

var proposeCmd = &cobra.Command{
	Use:   "propose",
	Short: "Generate meeting proposals from a free-text note",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := setup(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		svc, err := env.proposalService()
		if err != nil {
			return err
		}

		reqCtx := observability.NewRequestContext(slog.Default(), "propose", proposeUser)
		req := &proposal.GenerateRequest{
			Note:         proposeNote,
			LocationName: proposeLocation,
		}
		if proposeDuration > 0 {
			req.DurationOverrideMinutes = &proposeDuration
		}

		proposals, err := svc.GenerateProposals(ctx, proposeUser, req)
		if err != nil {
			reqCtx.Error("proposal generation failed", err)
			return err
		}
		reqCtx.Info("proposals generated",
			slog.Int("count", len(proposals)),
			slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
		)

		for i, p := range proposals {
			fmt.Printf("%d. %s\n   %s - %s\n", i+1, p.Title,
				p.StartTime.Format(time.RFC1123), p.EndTime.Format("15:04 MST"))
			if p.Description != "" {
				fmt.Printf("   %s\n", p.Description)
			}
			if p.Category != nil {
				fmt.Printf("   category: %s", p.Category.Name)
				if p.Category.SuggestedAttire != "" {
					fmt.Printf(" (attire: %s)", p.Category.SuggestedAttire)
				}
				fmt.Println()
			}
		}

		if proposeSave > 0 {
			if proposeSave > len(proposals) {
				return fmt.Errorf("no proposal %d to save", proposeSave)
			}
			result, err := svc.AcceptProposal(ctx, proposeUser, proposals[proposeSave-1])
			if err != nil {
				return err
			}
			fmt.Printf("saved meeting %s\n", result.Meeting.UID)
			for _, c := range result.Conflicts {
				fmt.Printf("warning: overlaps %q (%s - %s)\n", c.Title,
					c.StartTime.Format(time.RFC1123), c.EndTime.Format("15:04 MST"))
			}
		}
		return nil
	},
}

var exportUser int32

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Print the user's upcoming meetings as an iCalendar feed",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		payload, err := ical.NewExporter(env.store).Export(cmd.Context(), exportUser)
		if err != nil {
			return err
		}
		fmt.Print(payload)
		return nil
	},
}

var archiveID int32

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Archive a meeting (hard-deleted later by the purge sweep)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		archived := store.Archived
		now := time.Now().Unix()
		if err := env.store.UpdateMeeting(cmd.Context(), &store.UpdateMeeting{
			ID:        archiveID,
			RowStatus: &archived,
			UpdatedTs: &now,
		}); err != nil {
			return fmt.Errorf("failed to archive meeting: %w", err)
		}
		fmt.Printf("archived meeting %d\n", archiveID)
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Run one purge sweep over expired archived meetings",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer env.close()

		purge.NewRunner(env.store).RunOnce(cmd.Context())
		return nil
	},
}

type environment struct {
	profile *profile.Profile
	store   *store.Store
	close   func()
}

// setup loads the profile, opens the database and runs pending migrations.
func setup(ctx context.Context) (*environment, error) {
	instanceProfile := &profile.Profile{
		Mode:     viper.GetString("mode"),
		Data:     viper.GetString("data"),
		Driver:   viper.GetString("driver"),
		DSN:      viper.GetString("dsn"),
		Timezone: viper.GetString("timezone"),
		Version:  version,
	}
	instanceProfile.FromEnv()
	if err := instanceProfile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level := slog.LevelInfo
	if instanceProfile.IsDev() {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	storeInstance := store.New(dbDriver, instanceProfile)
	if err := storeInstance.Migrate(ctx); err != nil {
		storeInstance.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &environment{
		profile: instanceProfile,
		store:   storeInstance,
		close: func() {
			if err := storeInstance.Close(); err != nil {
				slog.Error("failed to close store", "error", err)
			}
		},
	}, nil
}

// proposalService wires the AI analyzer and the proposal engine.
func (e *environment) proposalService() (proposal.Service, error) {
	provider, err := ai.NewProvider(&ai.Config{
		APIKey:    e.profile.AIAPIKey,
		BaseURL:   e.profile.AIBaseURL,
		ChatModel: e.profile.AIModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}
	if err := provider.Validate(); err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(e.profile.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", e.profile.Timezone, err)
	}

	return proposal.NewService(e.store, note.NewAnalyzer(provider), loc), nil
}

func init() {
	rootCmd.PersistentFlags().String("mode", "dev", `mode of the planner, can be "prod" or "dev"`)
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name (aka. DSN)")
	rootCmd.PersistentFlags().String("timezone", "", "IANA timezone for proposal generation")

	for _, flag := range []string{"mode", "data", "driver", "dsn", "timezone"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
	viper.SetEnvPrefix("planner")
	viper.AutomaticEnv()

	proposeCmd.Flags().Int32Var(&proposeUser, "user", 1, "user ID to propose for")
	proposeCmd.Flags().StringVar(&proposeNote, "note", "", "free-text meeting note")
	proposeCmd.Flags().StringVar(&proposeLocation, "location", "", "meeting location name")
	proposeCmd.Flags().IntVar(&proposeDuration, "duration", 0, "duration override in minutes")
	proposeCmd.Flags().IntVar(&proposeSave, "save", 0, "save the Nth proposal after generation")
	_ = proposeCmd.MarkFlagRequired("note")

	exportCmd.Flags().Int32Var(&exportUser, "user", 1, "user ID to export")

	archiveCmd.Flags().Int32Var(&archiveID, "id", 0, "meeting ID to archive")
	_ = archiveCmd.MarkFlagRequired("id")

	rootCmd.AddCommand(proposeCmd, exportCmd, archiveCmd, purgeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
