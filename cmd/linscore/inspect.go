package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/linscore/core/model"
	"github.com/YuminosukeSato/linscore/linear"
)

// summary describes a loaded classifier.
type summary struct {
	ModelType  string         `json:"modelType"`
	Shape      string         `json:"shape"`
	Strategy   string         `json:"strategy,omitempty"`
	Params     int            `json:"params"`
	Categories map[string]int `json:"categories,omitempty"`
}

func summarize(clf model.Classifier) summary {
	s := summary{ModelType: clf.ModelType(), Shape: "binary", Params: clf.NumParams()}
	if m, ok := clf.(*linear.Multiclass); ok {
		s.Shape = "multiclass"
		s.Strategy = m.Strategy().String()
		s.Categories = make(map[string]int, len(m.Categories()))
		for _, c := range m.Categories() {
			b, _ := m.Component(c)
			s.Categories[c] = b.NumParams()
		}
	}
	return s
}

func (a *app) inspectCommand() *cobra.Command {
	var (
		modelRef string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe a model",
		Long:  `Prints the model type, shape, multiclass strategy and parameter counts of a model.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clf, err := a.loadFlag(cmd, modelRef)
			if err != nil {
				return err
			}
			s := summarize(clf)
			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "model type\t%s\n", s.ModelType)
			fmt.Fprintf(w, "shape\t%s\n", s.Shape)
			if s.Strategy != "" {
				fmt.Fprintf(w, "strategy\t%s\n", s.Strategy)
			}
			fmt.Fprintf(w, "params\t%d\n", s.Params)
			if m, ok := clf.(*linear.Multiclass); ok {
				for _, c := range m.Categories() {
					fmt.Fprintf(w, "  %s\t%d\n", c, s.Categories[c])
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVarP(&modelRef, "model", "m", "", "model name, path or URL")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	return cmd
}
