package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lukasmoellerch/tts-data-go/pkg/config"
	"github.com/lukasmoellerch/tts-data-go/pkg/logging"
	"github.com/lukasmoellerch/tts-data-go/pkg/meiliindex"
	"github.com/lukasmoellerch/tts-data-go/pkg/sigarrafetch"
	"github.com/lukasmoellerch/tts-data-go/pkg/ttsupdate"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type rootOptions struct {
	configPath  string
	projectRoot string
	dataRoot    string
	verbosity   int

	updateCourses   bool
	updateUnits     bool
	updateExams     bool
	continueOnError bool
	reportPath      string
	publish         bool

	meiliHost   string
	meiliKey    string
	indexPrefix string
}

// NewRootCommand builds the tts-data command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "tts-data [-c] [-u] [-e] [-v...]",
		Short: "Updates the json files that make the website work",
		Long: `Refreshes the course index, the curricular units and the exams of every
course and records the time of the update in data/timestamp.json.
Without any update flag only the timestamp is written.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, opts)
		},
	}

	persistent := cmd.PersistentFlags()
	persistent.StringVar(&opts.configPath, "config", config.DefaultFile, "config file, <name>.local.<ext> is merged over it")
	persistent.StringVar(&opts.projectRoot, "project-root", "", "website checkout to update (default \".\")")
	persistent.StringVar(&opts.dataRoot, "data-root", "", "directory of the json files (default <project-root>/data)")
	persistent.CountVarP(&opts.verbosity, "verbosity", "v", "increases the verbosity")
	persistent.StringVar(&opts.meiliHost, "meili-host", "", "meilisearch host")
	persistent.StringVar(&opts.meiliKey, "meili-key", "", "meilisearch api key")
	persistent.StringVar(&opts.indexPrefix, "index-prefix", "", "prefix of the meilisearch index names")

	flags := cmd.Flags()
	flags.BoolVarP(&opts.updateCourses, "update-courses", "c", false, "update the JSON course files")
	flags.BoolVarP(&opts.updateUnits, "update-ucs", "u", false, "update the JSON uc files")
	flags.BoolVarP(&opts.updateExams, "update-exams", "e", false, "update the JSON exams files")
	flags.BoolVar(&opts.continueOnError, "continue-on-error", false, "keep going when a course fails and report every failure at the end")
	flags.StringVar(&opts.reportPath, "report", "", "write a CSV report of every course to this file")
	flags.BoolVar(&opts.publish, "publish", false, "push the updated data to meilisearch")

	// --update_courses and friends keep working
	cmd.SetGlobalNormalizationFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	cmd.AddCommand(newPublishCommand(opts))
	return cmd
}

func ExecuteContext(ctx context.Context) {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	return config.Load(o.configPath, config.Config{
		ProjectRoot:     o.projectRoot,
		DataRoot:        o.dataRoot,
		ContinueOnError: o.continueOnError,
		Meili: config.Meili{
			Host:        o.meiliHost,
			APIKey:      o.meiliKey,
			IndexPrefix: o.indexPrefix,
		},
	})
}

func (o *rootOptions) logger(cmd *cobra.Command) zerolog.Logger {
	out := cmd.ErrOrStderr()
	pretty := false
	if f, ok := out.(*os.File); ok {
		pretty = isatty.IsTerminal(f.Fd())
	}
	return logging.New(out, o.verbosity, pretty)
}

func runUpdate(cmd *cobra.Command, opts *rootOptions) error {
	log := opts.logger(cmd)
	cfg, err := opts.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		return err
	}
	client, err := sigarrafetch.NewClient(sigarrafetch.ClientOptions{
		BaseURL:   cfg.Sigarra.BaseURL,
		Timeout:   timeout,
		UserAgent: cfg.HTTP.UserAgent,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	layout := ttsupdate.Layout{Root: cfg.DataRoot}
	updater := &ttsupdate.Updater{
		Catalog:         client,
		Courses:         client,
		Layout:          layout,
		CatalogURL:      cfg.CatalogURL,
		ProjectRoot:     cfg.ProjectRoot,
		ProjectEntries:  cfg.ExpectedEntries,
		ContinueOnError: cfg.ContinueOnError,
		Log:             log,
	}

	report, runErr := updater.Run(cmd.Context(), ttsupdate.Steps{
		Catalog: opts.updateCourses,
		Units:   opts.updateUnits,
		Exams:   opts.updateExams,
	})

	if opts.reportPath != "" {
		if err := writeReport(opts.reportPath, report); err != nil {
			log.Error().Err(err).Str("path", opts.reportPath).Msg("failed to write report")
		}
	}
	if len(report.Results) > 0 && (opts.verbosity > 0 || len(report.Failed()) > 0) {
		renderSummary(cmd.OutOrStdout(), report)
	}
	if runErr != nil {
		return runErr
	}

	if opts.publish {
		return publish(cmd.Context(), cfg, layout, log)
	}
	return nil
}

func writeReport(path string, report *ttsupdate.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := report.WriteCSV(f); err != nil {
		return err
	}
	return f.Close()
}

func publish(ctx context.Context, cfg config.Config, layout ttsupdate.Layout, log zerolog.Logger) error {
	result, err := meiliindex.Publish(ctx, meiliindex.Options{
		Host:        cfg.Meili.Host,
		APIKey:      cfg.Meili.APIKey,
		IndexPrefix: cfg.Meili.IndexPrefix,
		Log:         log,
	}, layout)
	if err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	log.Info().Int("courses", result.Courses).Int("units", result.Units).Msg("published search indexes")
	return nil
}
