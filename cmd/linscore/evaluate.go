package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/linscore/core/model"
	"github.com/YuminosukeSato/linscore/core/sparse"
	"github.com/YuminosukeSato/linscore/evaluation"
	"github.com/YuminosukeSato/linscore/linear"
	lserrors "github.com/YuminosukeSato/linscore/pkg/errors"
	"github.com/YuminosukeSato/linscore/pkg/log"
)

func (a *app) evaluateCommand() *cobra.Command {
	var modelRef, data, rocPath string

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Measure a model against labelled examples",
		Long: `Reads {"label": ..., "features": {...}} objects and prints AUC, Brier
score, log loss, accuracy, precision, recall and F1, followed by the
confusion matrix.

Binary labels are true/false, 1/0 or "1"/"0". Multiclass labels are category
names; examples whose label is not a model category are rejected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clf, err := a.loadFlag(cmd, modelRef)
			if err != nil {
				return err
			}
			in, err := a.input(data)
			if err != nil {
				return err
			}
			defer in.Close()

			examples, err := readExamples(in)
			if err != nil {
				return err
			}
			if len(examples) == 0 {
				return lserrors.WithStack(lserrors.ErrEmptyData)
			}

			xs := make([]*sparse.Vector, len(examples))
			for i, ex := range examples {
				xs[i] = ex.Features
			}
			probs, err := linear.PredictProba(cmd.Context(), clf, xs)
			if err != nil {
				return err
			}
			cols, err := linear.Columns(clf)
			if err != nil {
				return err
			}

			var (
				stats  map[string]float64
				conf   *evaluation.ConfusionMatrix
				curves map[string]evaluation.Curve
			)
			if _, ok := clf.(*linear.Multiclass); ok {
				ev, err := evaluation.NewMulticlass(cols)
				if err != nil {
					return err
				}
				for i, ex := range examples {
					label, err := ex.category()
					if err != nil {
						return lserrors.Wrapf(err, "example %d", i)
					}
					row := make(map[string]float64, len(cols))
					for j, c := range cols {
						row[c] = probs.At(i, j)
					}
					if err := ev.Add(label, model.NewPrediction(row)); err != nil {
						return lserrors.Wrapf(err, "example %d", i)
					}
				}
				stats, conf, curves = ev.Statistics(), ev.Confusion(), ev.Curves()
			} else {
				ev := evaluation.NewBinary()
				for i, ex := range examples {
					positive, err := ex.positive()
					if err != nil {
						return lserrors.Wrapf(err, "example %d", i)
					}
					if err := ev.Add(positive, probs.At(i, 1)); err != nil {
						return lserrors.Wrapf(err, "example %d", i)
					}
				}
				stats, conf = ev.Statistics(), ev.Confusion()
				curves = map[string]evaluation.Curve{clf.ModelType(): ev.ROC()}
			}

			a.logger.Info("evaluated",
				log.OperationKey, log.OperationEvaluate,
				log.SamplesKey, len(examples),
				log.ModelTypeKey, clf.ModelType(),
			)
			if err := writeStatistics(a, stats, conf); err != nil {
				return err
			}
			if rocPath != "" {
				return evaluation.SaveROCPlot(rocPath, "ROC "+clf.ModelType(), curves)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&modelRef, "model", "m", "", "model name, path or URL")
	cmd.Flags().StringVarP(&data, "data", "d", "-", "labelled examples, - for stdin")
	cmd.Flags().StringVar(&rocPath, "roc", "", "write the ROC curve to this image file (.png, .svg, .pdf)")
	return cmd
}

func writeStatistics(a *app, stats map[string]float64, conf *evaluation.ConfusionMatrix) error {
	names := make([]string, 0, len(stats))
	for k := range stats {
		names = append(names, k)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, k := range names {
		fmt.Fprintf(w, "%s\t%.4f\n", k, stats[k])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.out, "\n%s", conf)
	return err
}
