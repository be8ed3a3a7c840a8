// cmd/iconhunt-fetch/main.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"iconhunt/internal/config"
	"iconhunt/internal/favicon"
)

// Entry is one URL in the printed report.
type Entry struct {
	URL      string               `yaml:"url" json:"url"`
	FinalURL string               `yaml:"final_url,omitempty" json:"final_url,omitempty"`
	Error    string               `yaml:"error,omitempty" json:"error,omitempty"`
	Best     *favicon.Icon        `yaml:"best,omitempty" json:"best,omitempty"`
	Favicons map[int]favicon.Icon `yaml:"favicons,omitempty" json:"favicons,omitempty"`
}

func main() {
	var (
		configFile = flag.String("config", "", "Optional configuration file for resolver settings")
		urlFile    = flag.String("f", "", "File with one URL per line ('-' for stdin)")
		all        = flag.Bool("all", false, "List every icon instead of only the best one")
		asJSON     = flag.Bool("json", false, "Print JSON instead of YAML")
		insecure   = flag.Bool("insecure", false, "Skip TLS certificate verification")
		timeout    = flag.Duration("timeout", 0, "Per-request timeout (default from config)")
		workers    = flag.Int("workers", 0, "Concurrent lookups (default from config)")
		userAgent  = flag.String("ua", "", "User-Agent header override")
		verbose    = flag.Bool("verbose", false, "Verbose output")
	)
	flag.Parse()

	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.WarnLevel)
	}

	cfg := config.Default()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			logrus.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	urls, err := collectURLs(*urlFile, flag.Args())
	if err != nil {
		logrus.Fatalf("Failed to read URLs: %v", err)
	}
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "usage: iconhunt-fetch [flags] URL... | -f FILE")
		flag.PrintDefaults()
		os.Exit(2)
	}

	rc := cfg.Resolver.Favicon()
	if *insecure {
		rc.InsecureSkipVerify = true
	}
	if *timeout > 0 {
		rc.Timeout = *timeout
	}
	if *userAgent != "" {
		headers := make(map[string]string, len(rc.Headers)+1)
		for k, v := range rc.Headers {
			headers[k] = v
		}
		headers["User-Agent"] = *userAgent
		rc.Headers = headers
	}
	if *workers <= 0 {
		*workers = cfg.Resolver.BatchWorkers
	}

	resolver := favicon.NewResolver(rc, favicon.WithLogger(logrus.StandardLogger()))

	start := time.Now()
	items := resolver.ResolveAll(context.Background(), urls, favicon.FetchOptions{PreferLargestOnly: !*all}, *workers)
	report := buildReport(items, *all)

	if err := writeReport(os.Stdout, report, *asJSON); err != nil {
		logrus.Fatalf("Failed to write report: %v", err)
	}

	failed := 0
	for _, entry := range report {
		if entry.Error != "" {
			failed++
		}
	}
	logrus.WithFields(logrus.Fields{
		"urls":     len(urls),
		"failed":   failed,
		"duration": time.Since(start),
	}).Info("Done")

	if failed > 0 {
		os.Exit(1)
	}
}

// collectURLs merges command line arguments with the lines of path, skipping
// blanks and '#' comments.
func collectURLs(path string, args []string) ([]string, error) {
	urls := make([]string, 0, len(args))
	for _, arg := range args {
		if arg = strings.TrimSpace(arg); arg != "" {
			urls = append(urls, arg)
		}
	}

	if path == "" {
		return urls, nil
	}

	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

func buildReport(items []favicon.BatchItem, all bool) []Entry {
	report := make([]Entry, 0, len(items))
	for _, item := range items {
		entry := Entry{URL: item.URL, Error: item.Error}
		if item.Result != nil {
			entry.FinalURL = item.Result.FinalURL
			if best, ok := item.Result.Best(); ok && !all {
				entry.Best = &best
			}
			if all && len(item.Result.Icons) > 0 {
				entry.Favicons = item.Result.Ranked()
			}
		}
		report = append(report, entry)
	}
	return report
}

func writeReport(w io.Writer, report []Entry, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}
