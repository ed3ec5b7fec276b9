package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1F47E/kmlorm/pkg/config"
	"github.com/1F47E/kmlorm/pkg/kml"
)

// app holds the state shared by all subcommands.
type app struct {
	configFile string
	verbose    bool
	strict     bool
	namespace  string

	logger *slog.Logger
	opts   config.Options
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "kmlorm",
		Short: "Query KML and KMZ documents with Django-style lookups",
		Long: `kmlorm loads KML or KMZ documents from files or URLs and queries their
placemarks, folders and geometries with field lookups, ordering and
spatial filters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", os.Getenv("KMLORM_CONFIG"), "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&a.strict, "strict", false, "Fail on invalid coordinates instead of skipping them")
	rootCmd.PersistentFlags().StringVar(&a.namespace, "namespace", "", "Namespace handling: strict, lenient or ignore")

	rootCmd.AddCommand(
		newInspectCmd(a),
		newQueryCmd(a),
		newDistanceCmd(a),
		newBrowseCmd(a),
	)
	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	a.logger = setupLogger(cmd.ErrOrStderr(), a.verbose)

	opts, err := config.NewLoader(a.logger).Load(a.configFile)
	if err != nil {
		return err
	}
	if a.strict {
		opts.StrictCoordinateValidation = true
	}
	if a.namespace != "" {
		opts.NamespaceHandling = config.NamespaceMode(a.namespace)
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	a.opts = opts
	return nil
}

// open loads a document from a path or an http(s) URL.
func (a *app) open(ctx context.Context, source string) (*kml.File, error) {
	opts := []kml.Option{kml.WithConfig(a.opts), kml.WithLogger(a.logger)}
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return kml.FromURL(ctx, source, opts...)
	}
	return kml.FromFile(source, opts...)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, render(errorStyle, "Error: "+err.Error()))
		os.Exit(1)
	}
}
