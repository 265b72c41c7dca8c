package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/couchcryptid/rainfall-features/internal/adapter/csv"
	"github.com/couchcryptid/rainfall-features/internal/adapter/storage"
	"github.com/couchcryptid/rainfall-features/internal/artifact"
	"github.com/couchcryptid/rainfall-features/internal/domain"
	"github.com/spf13/cobra"
)

// errFeatureMismatch is returned by --compare when the dataset cannot be fed
// to the model unchanged.
var errFeatureMismatch = errors.New("prepared features do not match the model")

func newFeaturesCmd(a *app) *cobra.Command {
	var modelPath, compare string

	cmd := &cobra.Command{
		Use:   "features",
		Short: "List the feature names a trained model expects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if modelPath == "" {
				modelPath = a.cfg.ModelPath
			}
			store, err := storage.New(a.cfg, a.logger)
			if err != nil {
				return err
			}

			rc, err := store.Open(cmd.Context(), modelPath)
			if err != nil {
				return fmt.Errorf("%w: %w", artifact.ErrArtifactLoad, err)
			}
			model, err := artifact.Load(rc)
			rc.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", modelPath, err)
			}

			out := cmd.OutOrStdout()
			names, ok := model.FeatureNames()
			if !ok {
				fmt.Fprintf(out, "Feature names are not available in %s (%s artifact).\n", modelPath, model.Format())
				return nil
			}

			fmt.Fprintf(out, "Features expected by the model (%d):\n", len(names))
			for i, name := range names {
				fmt.Fprintf(out, "%3d  %s\n", i+1, name)
			}

			if compare == "" {
				return nil
			}
			header, err := readHeader(cmd, store, compare)
			if err != nil {
				return err
			}
			return printComparison(out, artifact.Compare(names, domain.FeatureColumns(header)))
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "model artifact (JSON manifest or LightGBM text); overrides MODEL_PATH")
	cmd.Flags().StringVar(&compare, "compare", "", "encoded CSV whose feature columns are checked against the model")
	return cmd
}

func readHeader(cmd *cobra.Command, store *storage.Store, location string) ([]string, error) {
	rc, err := store.Open(cmd.Context(), location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	cols, err := csv.ReadColumns(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return cols.Names, nil
}

func printComparison(out io.Writer, c artifact.Comparison) error {
	fmt.Fprintln(out)
	if c.Match() {
		fmt.Fprintln(out, "Prepared features match the model.")
		return nil
	}
	if len(c.Missing) > 0 {
		fmt.Fprintf(out, "Missing from dataset: %s\n", strings.Join(c.Missing, ", "))
	}
	if len(c.Extra) > 0 {
		fmt.Fprintf(out, "Unknown to model:     %s\n", strings.Join(c.Extra, ", "))
	}
	if !c.OrderOK {
		fmt.Fprintln(out, "Column order differs from the model's input order.")
	}
	return errFeatureMismatch
}
