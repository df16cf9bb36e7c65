package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/millie-ai/millie/config"
	"github.com/millie-ai/millie/internal"
	"github.com/millie-ai/millie/pkg/rag"
)

var (
	log *logrus.Logger

	cfgFile     string
	showVersion bool
	dumpConfig  bool
)

var cmd = &cobra.Command{
	Use:   "millie",
	Short: "millie answers community questions from meeting transcripts, stored knowledge and live web search",
	Run:   func(cmd *cobra.Command, args []string) { run() },
}

var ingestCmd = &cobra.Command{
	Use:     "ingest <dir>",
	Short:   "Embeds every .txt and .md file in a directory into the knowledge base",
	Example: "millie ingest ./knowledge/docs",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error configuring millie: %w", err)
		}
		config.SetLogLevel(cfg)

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		appState, err := NewAppState(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeAppState(appState)

		count, err := rag.NewIngestor(appState).IngestDirectory(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Ingested %d chunks. Knowledge base now holds %d records.\n", count, appState.VectorStore.Len())
		return nil
	},
}

var dumpJsonSchemaCmd = &cobra.Command{
	Use:     "json-schema",
	Short:   "Generates JSON Schema for millie's configuration file",
	Example: "millie json-schema > millie_config_schema.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := config.JSONSchema()
		if err != nil {
			return err
		}
		fmt.Println(string(schema))
		return nil
	},
}

func init() {
	cmd.AddCommand(ingestCmd)
	cmd.AddCommand(dumpJsonSchemaCmd)

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default config.yaml)")
	cmd.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "print version number")
	cmd.PersistentFlags().BoolVarP(&dumpConfig, "dump-config", "d", false, "dump config")
}

// Execute executes the root cobra command.
func Execute() {
	log = internal.GetLogger()
	log.SetLevel(logrus.InfoLevel)

	err := cmd.Execute()

	if err != nil {
		os.Exit(1)
	}
}
