package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nutricart/nutrigrade/grade"
)

type featureValue struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func newFeaturesCommand(settings *Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "features '<json-object>'",
		Short: "Print the feature vector the model would receive for an input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := grade.ParseInput(args[0])
			if err != nil {
				return fmt.Errorf("invalid JSON input: %w", err)
			}
			names := settings.DefaultFeatures
			if len(names) == 0 {
				names = grade.DefaultFeatures
			}
			if m, err := grade.LoadModel(settings.ModelPath, settings.LoadOptions()); err != nil {
				logrus.Warnf("model unavailable, using the default feature list: %v", err)
			} else {
				names = m.Features
			}

			frame := grade.ResolveFeatures(names, in)
			out := make([]featureValue, frame.Len())
			for i, name := range frame.Columns {
				out[i] = featureValue{Name: name, Value: frame.Values[i]}
			}
			writeJSON(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
