package commands

import (
	"fmt"

	"github.com/lukasmoellerch/tts-data-go/pkg/ttsupdate"
	"github.com/spf13/cobra"
)

func newPublishCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "publish",
		Short: "Pushes the stored courses and curricular units to meilisearch.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := opts.logger(cmd)
			cfg, err := opts.loadConfig()
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}
			return publish(cmd.Context(), cfg, ttsupdate.Layout{Root: cfg.DataRoot}, log)
		},
	}
}
