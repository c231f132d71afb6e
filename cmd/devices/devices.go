package devices

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkarvinen/soundpulse/internal/audio"
)

// Command creates the capture device listing command.
func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available audio capture devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := audio.ListCaptureDevices()
			if err != nil {
				return err
			}

			if len(infos) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No capture devices found.")
				return nil
			}

			for _, info := range infos {
				marker := " "
				if info.IsDefault {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %2d: %s [%s]\n", marker, info.Index, info.Name, info.ID)
			}
			return nil
		},
	}
}
