package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/agent"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/config"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/db"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/digest"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/leetcode"
	"github.com/HarshitBilagi/LeetCode-Revision-Agent/internal/platform/logger"
)

var (
	envFile string
	cfg     config.Config
	appLog  = logger.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Daily LeetCode revision emails from your solved problems",
	Long: `Recall keeps a local store of the LeetCode problems you solved and
emails a small digest every day: easiest and stalest problems first,
never the same problem twice on one day.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		l, err := logger.New(loaded.LogMode, loaded.LogFile)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		cfg, appLog = loaded, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		appLog.Sync()
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to the .env file")
}

func openStore() (*db.Store, error) {
	return db.Open(cfg.DatabasePath)
}

// today is "now" in the configured revision timezone.
func today() time.Time {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.Local
	}
	return time.Now().In(loc)
}

func newLeetCodeClient() (*leetcode.Client, error) {
	return leetcode.New(appLog, leetcode.Config{
		Username:   cfg.LeetCodeUsername,
		APIBase:    cfg.LeetCodeAPIBase,
		GraphQLURL: cfg.LeetCodeGraphQLURL,
		Session:    cfg.LeetCodeSession,
		CSRFToken:  cfg.CSRFToken,
		Timeout:    cfg.FetchTimeout,
	})
}

func newSyncer(store *db.Store) (*leetcode.Syncer, error) {
	client, err := newLeetCodeClient()
	if err != nil {
		return nil, err
	}
	return leetcode.NewSyncer(client, store, appLog, cfg.FetchLimit, db.ErrNotFound), nil
}

// newAgent wires the daily cycle. With withSender false the agent can only
// preview; dispatching would fail.
func newAgent(store *db.Store, withSender bool) (*agent.Agent, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	var syncer agent.Syncer
	if cfg.LeetCodeUsername != "" {
		s, err := newSyncer(store)
		if err != nil {
			return nil, err
		}
		syncer = s
	}

	var dispatcher agent.Dispatcher
	if withSender {
		sender, err := digest.NewSender(cfg, appLog)
		if err != nil {
			return nil, err
		}
		dispatcher = digest.NewDispatcher(sender, appLog)
	}

	return agent.New(store, syncer, dispatcher, appLog, agent.Options{
		Count:      cfg.DailyCount,
		Location:   loc,
		SyncOnRun:  cfg.SyncOnRun,
		RunTimeout: cfg.RunTimeout,
	}), nil
}
