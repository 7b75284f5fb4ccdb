package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"coverTonic/artwork"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the artwork stored in the disk cache",
	Long:  "Lists every stored artifact with its size, width and whether it matches the current artwork resolution.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		rt := newCacheStack()
		statuses, err := artwork.Inspect(rt.disk, rt.setting)
		if err != nil {
			logrus.Fatalf("Failed to inspect cache: %v", err)
		}

		if statusJSON {
			type entry struct {
				File     string    `json:"file"`
				Key      string    `json:"key,omitempty"`
				Bytes    int64     `json:"bytes"`
				Width    int       `json:"width"`
				Readable bool      `json:"readable"`
				Conforms bool      `json:"conforms"`
				Modified time.Time `json:"modified"`
			}
			out := struct {
				Directory  string  `json:"directory"`
				Resolution string  `json:"resolution"`
				Width      int     `json:"width"`
				Artifacts  []entry `json:"artifacts"`
			}{Directory: rt.cfg.CacheDir, Resolution: string(rt.setting.Resolution()), Width: rt.setting.TargetWidth(), Artifacts: []entry{}}
			for _, st := range statuses {
				e := entry{File: st.Name, Bytes: st.Size, Width: st.Width, Readable: st.Readable, Conforms: st.Conforms, Modified: st.ModTime}
				if st.HasKey {
					e.Key = st.Key.String()
				}
				out.Artifacts = append(out.Artifacts, e)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				logrus.Fatal(err)
			}
			return
		}

		var total uint64
		stale := 0
		tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "Directory:\t%s\n", rt.cfg.CacheDir)
		fmt.Fprintf(tw, "Resolution:\t%s (%dpx)\n\n", rt.setting.Resolution(), rt.setting.TargetWidth())
		fmt.Fprintln(tw, "FILE\tSIZE\tWIDTH\tSTATE\tMODIFIED")
		for _, st := range statuses {
			state := "ok"
			switch {
			case !st.Readable:
				state = "unreadable"
				stale++
			case !st.Conforms:
				state = "stale"
				stale++
			}
			total += uint64(st.Size)
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", st.Name, humanize.Bytes(uint64(st.Size)), st.Width, state, humanize.Time(st.ModTime))
		}
		tw.Flush()
		fmt.Printf("\n%d artifacts, %s, %d stale\n", len(statuses), humanize.Bytes(total), stale)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
}
