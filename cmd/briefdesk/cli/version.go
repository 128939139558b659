package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// buildInfo is what `briefdesk version` reports, including where this
// installation keeps its data.
type buildInfo struct {
	Version       string `json:"version"`
	Commit        string `json:"commit"`
	Built         string `json:"built"`
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
	DataDir       string `json:"data_dir"`
	StorageDriver string `json:"storage_driver"`
}

func newBuildInfo(commit, date string) buildInfo {
	return buildInfo{
		Version:       versionString(),
		Commit:        commit,
		Built:         date,
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
		DataDir:       resolveDataDir(),
		StorageDriver: viper.GetString("storage.driver"),
	}
}

func (b buildInfo) write(w io.Writer, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(b)
	}
	fmt.Fprintf(w, "briefdesk %s\n", b.Version)
	fmt.Fprintf(w, "  commit:   %s\n", b.Commit)
	fmt.Fprintf(w, "  built:    %s\n", b.Built)
	fmt.Fprintf(w, "  go:       %s (%s)\n", b.GoVersion, b.Platform)
	fmt.Fprintf(w, "  data dir: %s\n", b.DataDir)
	fmt.Fprintf(w, "  storage:  %s\n", b.StorageDriver)
	return nil
}

func newVersionCmd(commit, date string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version and installation information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return newBuildInfo(commit, date).write(cmd.OutOrStdout(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")

	return cmd
}
