/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valpere/potrans/internal"
	"github.com/valpere/potrans/internal/catalog"
	"github.com/valpere/potrans/internal/config"
	"github.com/valpere/potrans/internal/runner"
	"github.com/valpere/potrans/internal/store"
)

var version = "0.1.0"

var (
	cfgFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "potrans <po_file>",
	Short: "Translate untranslated gettext messages with an LLM",
	Long: `Translate the untranslated messages of a gettext PO catalog in place.

The target language is read from the catalog's "Language" header. Messages are
sent in one batch, bounded by a character budget; whatever does not fit is left
for the next run.

Supported providers: moonshot (default, needs MOONSHOT_API_KEY), google.

Use "potrans memory --help" to inspect the translation memory.`,
	Args:          cobra.ExactArgs(1),
	Version:       version,
	SilenceErrors: true,
	RunE:          runTranslate,
}

func runTranslate(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return err
	}

	path := args[0]
	cat, err := catalog.Load(path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := runner.Run(ctx, cat, provider, runner.Options{
		Budget:    cfg.Budget,
		MarkFuzzy: cfg.MarkFuzzy,
		OnLog:     logInfo,
	})
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}

	if err := catalog.Save(path, cat); err != nil {
		return err
	}

	if !cfg.NoMemory {
		recordRun(ctx, cfg, path, provider.Name(), res)
	}

	total, translated, _ := cat.Stats()
	logInfo("%d of %d messages translated", translated, total)
	logSuccess("Translation completed.")
	return nil
}

// recordRun writes the run and its applied translations to the translation
// memory. The catalog is already saved, so failures only warn.
func recordRun(ctx context.Context, cfg *config.Config, path, providerName string, res *runner.Result) {
	db, err := store.New(cfg.DBPath)
	if err != nil {
		logWarning("translation memory unavailable: %v", err)
		return
	}
	defer db.Close()

	stopIndex := -1
	if res.Selection.Stop != nil {
		stopIndex = res.Selection.Stop.Index
	}

	runID, err := db.SaveRun(ctx, internal.RunRecord{
		CatalogPath: path,
		Language:    res.Language,
		Provider:    providerName,
		Budget:      cfg.Budget,
		Candidates:  len(res.Selection.MsgIDs),
		Applied:     len(res.Changes),
		StopIndex:   stopIndex,
		Timestamp:   time.Now(),
	})
	if err != nil {
		logWarning("failed to record run: %v", err)
		return
	}

	for _, ch := range res.Changes {
		if ch.MsgStr == "" {
			continue
		}
		if err := db.SaveToMemory(ctx, ch.MsgID, res.Language, ch.MsgStr, providerName, runID); err != nil {
			logWarning("failed to store translation: %v", err)
			return
		}
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logError("%v", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.Flags()
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: potrans.yaml in . or $HOME/.config/potrans)")

	flags.String("provider", config.ProviderMoonshot, "Translation provider: moonshot or google")
	flags.Int("budget", config.DefaultBudget, "Maximum characters sent per run")
	flags.String("model", "", "Moonshot model name")
	flags.Float64("temperature", 0, "Moonshot sampling temperature")
	flags.String("endpoint", "", "Moonshot chat completion endpoint")
	flags.Duration("timeout", 0, "Request timeout (0 = none)")
	flags.String("credentials", "", "Path to Google Cloud credentials")
	flags.Bool("mark-fuzzy", false, "Flag new translations as fuzzy for review")
	flags.Bool("no-memory", false, "Do not record the run in the translation memory")
	rootCmd.PersistentFlags().String("db", config.DefaultDBPath, "Translation memory database path")

	bind := map[string]string{
		"provider":             "provider",
		"budget":               "budget",
		"moonshot.model":       "model",
		"moonshot.temperature": "temperature",
		"moonshot.base_url":    "endpoint",
		"moonshot.timeout":     "timeout",
		"google.credentials":   "credentials",
		"mark_fuzzy":           "mark-fuzzy",
		"no_memory":            "no-memory",
	}
	for key, name := range bind {
		v.BindPFlag(key, flags.Lookup(name))
	}
	v.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
}
