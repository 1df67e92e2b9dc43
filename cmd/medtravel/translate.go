package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ZaguanLabs/medtravel"
	"github.com/ZaguanLabs/medtravel/cache"
	"github.com/ZaguanLabs/medtravel/page"
	"github.com/ZaguanLabs/medtravel/pipeline"
	"github.com/ZaguanLabs/medtravel/provider"
)

type translateOptions struct {
	lang      string
	endpoint  string
	provider  string
	root      string
	output    string
	cacheFile string
	prefsPath string
	timeout   time.Duration
	jsonOut   bool
	quiet     bool
}

func newTranslateCmd(opts *globalOptions) *cobra.Command {
	o := &translateOptions{}

	cmd := &cobra.Command{
		Use:   "translate [file.html]",
		Short: "Translate an HTML page the way the site pipeline does",
		Long: `Translate the text of an HTML page (or stdin) into a site language.

Without --lang the language used last time is reused. With --endpoint the
strings are sent to a running medtravel server's /api/translate instead of
the configured upstream provider.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), opts, o, args, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.lang, "lang", "l", "", "Target language code (e.g. fr, ar_SA)")
	f.StringVar(&o.endpoint, "endpoint", "", "Base URL of a medtravel server to translate through")
	f.StringVar(&o.provider, "provider", "", "Override translation.provider (openai, mock)")
	f.StringVar(&o.root, "root", "", "CSS selector of the content root (default: site.root_selector)")
	f.StringVarP(&o.output, "output", "o", "", "Output file (default: stdout)")
	f.StringVar(&o.cacheFile, "cache-file", "", "Translation snapshot read before and updated after the run")
	f.StringVar(&o.prefsPath, "prefs", pipeline.DefaultPreferencesPath(), "File remembering the last language")
	f.DurationVar(&o.timeout, "timeout", 2*time.Minute, "Overall timeout")
	f.BoolVar(&o.jsonOut, "json", false, "Print the result as JSON")
	f.BoolVarP(&o.quiet, "quiet", "q", false, "Suppress progress output")
	return cmd
}

// translateOutput is the --json result.
type translateOutput struct {
	Content    string `json:"content"`
	Language   string `json:"language"`
	Nodes      int    `json:"nodes"`
	Applied    int    `json:"applied"`
	CacheHits  int    `json:"cache_hits"`
	Fetched    int    `json:"fetched"`
	Failed     int    `json:"failed"`
	BatchCalls int    `json:"batch_calls"`
	ElapsedMs  int64  `json:"elapsed_ms"`
}

func runTranslate(ctx context.Context, g *globalOptions, o *translateOptions, args []string, stdout, stderr io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if o.provider != "" {
		cfg.Translation.Provider = o.provider
	}
	root := o.root
	if root == "" {
		root = cfg.Site.RootSelector
	}

	state := pipeline.NewLanguageState(pipeline.NewFilePreferences(o.prefsPath))
	code := o.lang
	if code == "" {
		// Reuse the last language unless it is the base one.
		code = state.Code()
		if medtravel.IsBaseLanguage(code) {
			return errors.New("--lang is required")
		}
	}

	doc, name, err := readDocument(args)
	if err != nil {
		return err
	}

	var p medtravel.Provider
	if o.endpoint != "" {
		p = provider.NewHTTPProvider(provider.HTTPConfig{BaseURL: o.endpoint, Timeout: cfg.Translation.RequestTimeout})
	} else if p, err = buildProvider(cfg); err != nil {
		return err
	}

	mem := cache.NewMemory(0)
	if o.cacheFile != "" {
		if _, err := cache.NewImporter(mem).ImportFromFile(o.cacheFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading cache file: %w", err)
		}
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	batch := pipeline.NewBatchClient(p, mem,
		pipeline.WithBatchSize(cfg.Translation.BatchSize),
		pipeline.WithBatchPause(cfg.Translation.BatchPause),
		pipeline.WithBatchTimeout(cfg.Translation.RequestTimeout),
		pipeline.WithStyle(medtravel.TranslationStyle(cfg.Translation.Style)),
		pipeline.WithBatchLogger(logger),
	)
	session := pipeline.NewSession(doc, state, batch,
		pipeline.WithSettleDelay(0),
		pipeline.WithScanner(page.NewScanner(page.WithRootSelector(root))),
		pipeline.WithLogger(logger),
	)
	defer session.Close()

	lang := medtravel.LookupLanguage(code)
	if !o.quiet {
		fmt.Fprintf(stderr, "Translating %s to %s (%s)...\n", name, lang.Name, lang.Code)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	res, err := session.SetLanguage(ctx, code)
	if err != nil {
		return fmt.Errorf("translation failed: %w", err)
	}
	elapsed := time.Since(start)

	content, err := doc.HTML()
	if err != nil {
		return err
	}

	if o.cacheFile != "" {
		if _, err := cache.NewExporter(mem).ExportToFile(o.cacheFile, map[string]string{"source": "translate"}); err != nil {
			logger.Warn("Failed to save cache file", zap.String("path", o.cacheFile), zap.Error(err))
		}
	}

	var out io.Writer = stdout
	if o.output != "" {
		f, err := os.Create(o.output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	if o.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(translateOutput{
			Content:    content,
			Language:   res.Language,
			Nodes:      res.Nodes,
			Applied:    res.Applied,
			CacheHits:  res.CacheHits,
			Fetched:    res.Fetched,
			Failed:     res.Failed,
			BatchCalls: res.BatchCalls,
			ElapsedMs:  elapsed.Milliseconds(),
		})
	}

	fmt.Fprint(out, content)

	if !o.quiet {
		fmt.Fprintf(stderr, "\nDone in %v\n", elapsed.Round(time.Millisecond))
		fmt.Fprintf(stderr, "  Nodes found:  %d\n", res.Nodes)
		fmt.Fprintf(stderr, "  Applied:      %d\n", res.Applied)
		fmt.Fprintf(stderr, "  From cache:   %d\n", res.CacheHits)
		if res.Failed > 0 {
			fmt.Fprintf(stderr, "  Failed:       %d\n", res.Failed)
		}
	}
	return nil
}

// readDocument parses the file named in args, or stdin.
func readDocument(args []string) (*page.Document, string, error) {
	if len(args) == 0 {
		doc, err := page.Parse(os.Stdin)
		return doc, "stdin", err
	}
	doc, err := page.ParseFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("reading file: %w", err)
	}
	return doc, filepath.Base(args[0]), nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}
