package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nutricart/nutrigrade/grade"
)

type inspectOutput struct {
	grade.Description
	BundlePath string `json:"bundle_path"`
	NativePath string `json:"native_path"`
}

func newInspectCommand(settings *Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Load the model and print its kind, features and classes as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := grade.LoadModel(settings.ModelPath, settings.LoadOptions())
			if err != nil {
				return fmt.Errorf("load model: %w", err)
			}
			writeJSON(cmd.OutOrStdout(), inspectOutput{
				Description: m.Describe(),
				BundlePath:  settings.ModelPath,
				NativePath:  grade.NativePath(settings.ModelPath, settings.NativeExt),
			})
			return nil
		},
	}
}
