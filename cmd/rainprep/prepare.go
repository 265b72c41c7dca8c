package main

import (
	"github.com/couchcryptid/rainfall-features/internal/adapter/csv"
	kafkaadapter "github.com/couchcryptid/rainfall-features/internal/adapter/kafka"
	"github.com/couchcryptid/rainfall-features/internal/adapter/storage"
	"github.com/couchcryptid/rainfall-features/internal/observability"
	"github.com/couchcryptid/rainfall-features/internal/pipeline"
	"github.com/couchcryptid/rainfall-features/internal/report"
	"github.com/spf13/cobra"
)

func newPrepareCmd(a *app) *cobra.Command {
	var input, output string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Run feature preparation once",
		Long: `Reads the raw rainfall CSV, derives Season, RainRange, Quarter and
IsRainySeason, one-hot encodes province, season and quarter, scales the
rainfall columns into [0,1] and writes the encoded table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input != "" {
				a.cfg.InputPath = input
			}
			if output != "" {
				a.cfg.OutputPath = output
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			p, closeFn, err := a.buildPipeline(a.newMetrics())
			if err != nil {
				return err
			}
			defer closeFn()

			summary, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}
			if quiet {
				return nil
			}
			return report.Render(cmd.OutOrStdout(), summary)
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "raw rainfall CSV (path or s3://bucket/key); overrides RAIN_INPUT_PATH")
	cmd.Flags().StringVar(&output, "output", "", "encoded CSV destination; overrides RAIN_OUTPUT_PATH")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print the run summary")
	return cmd
}

// buildPipeline wires the CSV source, the CSV sink and, when brokers are
// configured, the Kafka sink. The returned func releases the Kafka producer.
func (a *app) buildPipeline(metrics *observability.Metrics) (*pipeline.Pipeline, func(), error) {
	store, err := storage.New(a.cfg, a.logger)
	if err != nil {
		return nil, nil, err
	}

	reader := csv.NewReader(store, a.cfg.InputPath, a.logger)
	loaders := []pipeline.Loader{csv.NewWriter(store, a.cfg.OutputPath, a.logger)}
	closeFn := func() {}

	if a.cfg.KafkaEnabled() {
		kw := kafkaadapter.NewWriter(a.cfg, a.logger)
		loaders = append(loaders, kw)
		closeFn = func() {
			if err := kw.Close(); err != nil {
				a.logger.Error("kafka writer close error", "error", err)
			}
		}
		a.logger.Info("kafka feature sink enabled", "topic", a.cfg.KafkaSinkTopic, "brokers", a.cfg.KafkaBrokers)
	}

	p := pipeline.New(reader, pipeline.NewTransformer(a.logger), a.logger, metrics, loaders...)
	return p, closeFn, nil
}
