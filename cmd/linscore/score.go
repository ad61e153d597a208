package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/linscore/core/model"
	"github.com/YuminosukeSato/linscore/core/sparse"
	"github.com/YuminosukeSato/linscore/linear"
	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
	"github.com/YuminosukeSato/linscore/pkg/log"
)

func (a *app) scoreCommand() *cobra.Command {
	var modelRef, features string

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Predict probabilities for feature vectors",
		Long: `Reads JSON feature objects such as {"a":1,"b":0.5} and prints one
prediction per instance as {"probs":{...},"label":"..."}.

Binary models report the categories "0" and "1".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clf, err := a.loadFlag(cmd, modelRef)
			if err != nil {
				return err
			}
			in, err := a.input(features)
			if err != nil {
				return err
			}
			defer in.Close()

			g, ctx := errgroup.WithContext(cmd.Context())
			feed := make(chan *sparse.Vector)
			g.Go(func() error {
				defer close(feed)
				return readInstances(in, func(_ int, f *sparse.Vector) error {
					select {
					case feed <- f:
						return nil
					case <-ctx.Done():
						return ctx.Err()
					}
				})
			})

			stream := linear.NewStream(64)
			results := stream.Run(ctx, clf, feed)
			enc := json.NewEncoder(a.out)
			g.Go(func() error {
				for res := range results {
					if res.Err != nil {
						return lserrors.Wrapf(res.Err, "instance %d", res.Index)
					}
					if err := enc.Encode(res.Prediction); err != nil {
						return err
					}
				}
				return nil
			})
			err = g.Wait()

			m := stream.Metrics()
			a.logger.Debug("scored",
				log.OperationKey, log.OperationPredict,
				log.SamplesKey, m.Processed,
				log.DurationMsKey, m.Elapsed.Milliseconds(),
			)
			return err
		},
	}
	cmd.Flags().StringVarP(&modelRef, "model", "m", "", "model name, path or URL")
	cmd.Flags().StringVarP(&features, "features", "f", "-", "feature file, - for stdin")
	return cmd
}

func (a *app) explainCommand() *cobra.Command {
	var (
		modelRef, features string
		n                  int
		asJSON             bool
	)

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Show the features that contribute most to a prediction",
		Long: `Reads JSON feature objects and prints, per instance, the present features
with the largest model weights as key(weight), strongest first.

Multiclass models list every category in ascending order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clf, err := a.loadFlag(cmd, modelRef)
			if err != nil {
				return err
			}
			in, err := a.input(features)
			if err != nil {
				return err
			}
			defer in.Close()

			enc := json.NewEncoder(a.out)
			return readInstances(in, func(_ int, f *sparse.Vector) error {
				if asJSON {
					return enc.Encode(explanation(clf, f, n))
				}
				_, err := fmt.Fprintln(a.out, clf.Explanation(f, n))
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&modelRef, "model", "m", "", "model name, path or URL")
	cmd.Flags().StringVarP(&features, "features", "f", "-", "feature file, - for stdin")
	cmd.Flags().IntVarP(&n, "top", "n", linear.DefaultExplainN, "features per explanation (negative for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print explanations as JSON")
	return cmd
}

// explanation returns the structured attributions of clf for f.
func explanation(clf model.Classifier, f *sparse.Vector, n int) any {
	switch m := clf.(type) {
	case *linear.Binary:
		return m.ExplainN(f, n)
	case *linear.Multiclass:
		return m.ExplainN(f, n)
	default:
		return clf.Explanation(f, n).String()
	}
}

// loadFlag loads the model named by the --model flag. In dummy mode the flag
// may be empty.
func (a *app) loadFlag(cmd *cobra.Command, ref string) (model.Classifier, error) {
	if ref == "" && !a.cfg.Dummy {
		return nil, lserrors.NewValidationError("model", "required", ref)
	}
	return a.load(cmd.Context(), ref)
}
