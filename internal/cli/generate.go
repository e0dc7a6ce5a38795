package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralt/appstream-gen/internal/fetcher"
	"github.com/ralt/appstream-gen/internal/hints"
	"github.com/ralt/appstream-gen/internal/models"
	"github.com/ralt/appstream-gen/internal/pipeline"
	"github.com/ralt/appstream-gen/internal/report"
	"github.com/ralt/appstream-gen/internal/stats"
	"github.com/ralt/appstream-gen/internal/store"
)

const indexTemplate = `Suite {{.suite}}/{{.section}}: {{.total_errors}} errors, {{.total_warnings}} warnings, {{.total_infos}} infos
{{range .maintainers}}  {{.maintainer}}:
{{range .packages}}    {{.pkg_name}} {{.pkg_version}} (e={{.errors}} w={{.warnings}} i={{.infos}})
{{end}}{{end}}`

// NewGenerateCmd creates the generate command.
func NewGenerateCmd() *cobra.Command {
	var cfg models.Config
	var suiteName string
	var sections, arches []string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Scan a repository and generate issue reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Suites = []models.SuiteConfig{{Name: suiteName, Sections: sections, Arches: arches}}
			if err := validateConfig(&cfg); err != nil {
				return err
			}

			logrus.Infof("scanning %s (suite=%s)", cfg.RepoRoot, suiteName)
			return runGeneration(cmd.Context(), &cfg, outputDir)
		},
	}

	cmd.Flags().StringVar(&cfg.RepoRoot, "repo-root", "", "Repository root (local path or http(s) URL)")
	cmd.Flags().StringVar(&cfg.TmpDir, "tmp-dir", os.TempDir(), "Directory for caching remotely fetched files")
	cmd.Flags().StringVar(&suiteName, "suite", "stable", "Suite name to scan")
	cmd.Flags().StringSliceVar(&sections, "sections", []string{"main"}, "Sections within the suite")
	cmd.Flags().StringSliceVar(&arches, "arches", []string{"amd64"}, "Architectures within each section")
	cmd.Flags().IntVar(&cfg.FormatVersion, "format-version", 0, "AppStream format version, gates reverse-DNS id rewriting")
	cmd.Flags().StringVar(&cfg.SigningKeyring, "signing-keyring", "", "Path to an armored OpenPGP public keyring for InRelease verification")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory to write rendered reports into (defaults to <workspace-dir>/reports)")
	cmd.Flags().StringVar(&cfg.WorkspaceDir, "workspace-dir", ".", "Root for derived outputs")
	cmd.Flags().StringVar(&cfg.ProjectName, "project-name", "", "Disambiguates vendor template directory lookups for a real renderer")
	cmd.Flags().StringVar(&cfg.HTMLBaseURL, "html-base-url", "", "Base URL injected as root_url in every rendered page")
	cmd.Flags().StringVar(&cfg.FetcherUserAgent, "fetcher-user-agent", "appstream-gen/1.0", "User-Agent header sent by the fetcher")
	cmd.Flags().IntVar(&cfg.FetcherMaxRetries, "fetcher-max-retries", 3, "Maximum retry attempts for a remote fetch")
	cmd.Flags().IntVar(&cfg.FetcherBaseDelay, "fetcher-base-delay-ms", 500, "Base retry delay, in milliseconds")

	return cmd
}

func validateConfig(cfg *models.Config) error {
	if cfg.RepoRoot == "" {
		return &models.PipelineError{Class: models.ClassFatal, Component: "cli", Err: fmt.Errorf("--repo-root is required")}
	}
	return nil
}

func runGeneration(ctx context.Context, cfg *models.Config, outputDir string) error {
	registry, err := hints.LoadDefault()
	if err != nil {
		return &models.PipelineError{Class: models.ClassFatal, Component: "HintRegistry", Err: err}
	}

	if outputDir == "" {
		outputDir = filepath.Join(cfg.WorkspaceDir, "reports")
	}

	memStore := store.NewMemory(nil)
	f := fetcher.New(
		fetcher.WithUserAgent(cfg.FetcherUserAgent),
		fetcher.WithMaxRetries(cfg.FetcherMaxRetries),
		fetcher.WithBaseDelay(time.Duration(cfg.FetcherBaseDelay)*time.Millisecond),
	)

	driver := pipeline.New(*cfg, f, memStore, registry)
	results, err := driver.Run(ctx)
	if err != nil {
		return &models.PipelineError{Class: models.ClassFatal, Component: "pipeline", Err: err}
	}

	statsStore := stats.New(memStore)
	if err := pipeline.RecordStatistics(statsStore, results); err != nil {
		logrus.Warnf("cli: recording statistics: %v", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return &models.PipelineError{Class: models.ClassFatal, Component: "cli", Err: err}
	}

	renderer := report.StubRenderer{}
	for _, r := range results {
		if r.Skipped || r.Summary == nil {
			continue
		}
		rendered, err := renderer.Render(indexTemplate, report.MaintainerIndexContext(r.Summary, cfg.HTMLBaseURL))
		if err != nil {
			logrus.Warnf("cli: rendering report for %s/%s: %v", r.Suite, r.Section, err)
			continue
		}
		outPath := filepath.Join(outputDir, fmt.Sprintf("%s-%s.txt", r.Suite, r.Section))
		if err := os.WriteFile(outPath, []byte(rendered), 0644); err != nil {
			logrus.Warnf("cli: writing report %s: %v", outPath, err)
		}
	}

	logrus.Info("generation completed")
	return nil
}
