package cmd

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/thomhuang/australia-postcode/internal/config"
	"github.com/thomhuang/australia-postcode/postcode"
)

var Version = "dev"

// app carries state shared by the subcommands of one invocation.
type app struct {
	cfg *config.Config

	dataPath string
	dataURL  string
	member   string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "postcode",
		Short: "Australian postcode lookup and distances",
		Long: `
postcode answers lookups against the Australian postcode reference dataset:
records by postcode or suburb, the nearest record to a coordinate pair,
distances between postcodes and postcodes within a radius.
`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			c, err := config.Load()
			if err != nil {
				return eris.Wrap(err, "load config")
			}
			if a.dataPath != "" {
				c.Dataset.Path, c.Dataset.URL = a.dataPath, ""
			}
			if a.dataURL != "" {
				c.Dataset.URL, c.Dataset.Path = a.dataURL, ""
			}
			if a.member != "" {
				c.Dataset.Member = a.member
			}
			a.cfg = c

			if err := config.InitLogger(c.Log); err != nil {
				return eris.Wrap(err, "init logger")
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = zap.L().Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.dataPath, "data", "", "dataset CSV or zip file (overrides dataset.path)")
	root.PersistentFlags().StringVar(&a.dataURL, "url", "", "dataset URL (overrides dataset.url)")
	root.PersistentFlags().StringVar(&a.member, "member", "", "CSV member inside a zip dataset")
	root.MarkFlagsMutuallyExclusive("data", "url")

	root.AddCommand(
		newPostcodeCmd(a),
		newSuburbCmd(a),
		newNearestCmd(a),
		newDistanceCmd(a),
		newWithinCmd(a),
		newNearbyCmd(a),
	)
	return root
}

// catalog loads the configured dataset, once per invocation.
func (a *app) catalog(cmd *cobra.Command) (*postcode.Catalog, error) {
	log := zap.L().With(zap.String("component", "cmd"))

	start := time.Now()
	c, err := a.cfg.LoadCatalog(cmd.Context())
	if err != nil {
		log.Error("could not load postcode dataset", zap.Error(err))
		return nil, err
	}

	n, _ := c.Len()
	log.Debug("postcode dataset loaded",
		zap.Int("records", n),
		zap.String("path", a.cfg.Dataset.Path),
		zap.String("url", a.cfg.Dataset.URL),
		zap.Duration("elapsed", time.Since(start)),
	)
	return c, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return eris.Wrap(err, "encode output")
	}
	return nil
}

// Execute runs the command line and exits non-zero on failure.
func Execute(version string) {
	Version = version

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		root.PrintErrln("Error:", err)
		os.Exit(1)
	}
}
