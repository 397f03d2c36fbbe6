package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	ripserext "github.com/contriboss/ripserplusplus-build"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Run the CMake clean target in the build temporary directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, config, ext, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return ripserext.NewBuildExt().Clean(cmd.Context(), config, []*ripserext.Extension{ext})
	},
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Show the record of the last successful build",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings, err := ripserext.LoadSettings(ripserext.LoadOptions{
			ConfigFile: cfgFile,
			Flags:      cmd.Flags(),
		})
		if err != nil {
			return err
		}

		record, err := ripserext.ReadBuildRecord(settings.BuildTemp)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, titleStyle.Render(record.Extension))
		fmt.Fprintln(out, field("mode", string(record.Mode)))
		fmt.Fprintln(out, field("platform", record.Platform))
		fmt.Fprintln(out, field("extension", record.ExtensionDir))
		fmt.Fprintln(out, field("finished", record.FinishedAt.Format("2006-01-02 15:04:05 MST")))
		for _, r := range record.Relocated {
			fmt.Fprintln(out, field("relocated", r.Dest()))
		}
		for _, artifact := range record.Artifacts {
			fmt.Fprintln(out, field("artifact", artifact))
		}
		return nil
	},
}
