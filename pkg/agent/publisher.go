package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jakefearsd/contentpipeline/pkg/document"
	"github.com/jakefearsd/contentpipeline/pkg/state"
)

// PublisherConfig names the sink the Publisher writes to.
type PublisherConfig struct {
	OutputDir     string
	FileExtension string // including the leading dot, e.g. ".wiki"
}

var pageNameSanitizer = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// PageName derives a filesystem-safe page name from a topic, collapsing
// each run of characters other than letters, digits, '.', '_' and '-' to a
// single underscore and trimming leading and trailing underscores.
// Exported so pkg/pipeline can
// derive the same name for its failed-<topic>-<timestamp> debug dumps
// (§4.8.3).
func PageName(topic string) string {
	sanitized := pageNameSanitizer.ReplaceAllString(strings.TrimSpace(topic), "_")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "untitled"
	}
	return sanitized
}

// Publish is the Publisher agent (§4.5): unlike every other agent
// implementation it makes no LLM call. It writes the edited article's
// wikiContent verbatim (UTF-8, LF newlines) to
// <outputDir>/<pageName><fileExtension> and transitions the document to
// PUBLISHED. Returns the path written.
func Publish(doc *document.Document, cfg PublisherConfig) (string, error) {
	article := doc.FinalArticle()
	if article == nil {
		return "", fmt.Errorf("publisher: document has no final article")
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("publisher: creating output directory: %w", err)
	}

	name := PageName(doc.Brief().Topic)
	path := filepath.Join(cfg.OutputDir, name+cfg.FileExtension)

	content := strings.ReplaceAll(article.WikiContent, "\r\n", "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("publisher: writing %s: %w", path, err)
	}

	_ = doc.RecordContribution(document.Contribution{
		AgentRole: "publisher",
		Summary:   fmt.Sprintf("published to %s", path),
	})

	if err := doc.TransitionTo(state.Published); err != nil {
		return path, fmt.Errorf("publisher: transitioning to PUBLISHED: %w", err)
	}

	return path, nil
}
