package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jakefearsd/contentpipeline/pkg/agent"
	"github.com/jakefearsd/contentpipeline/pkg/document"
)

// persistFailureDocument writes the debug dump described in §4.8.3: the
// last content the pipeline produced (the final article if the Editor ran,
// else the draft, else nothing) alongside the failure reason, to
// <outputDir>/failed-<PageName(topic)>-<createdAt unix seconds><ext>, where
// <ext> is the configured extension including its dot. It writes nothing and
// returns ("", nil) when the document has no content worth dumping.
func (e *Executor) persistFailureDocument(doc *document.Document, cause error) (string, error) {
	var content string
	switch {
	case doc.FinalArticle() != nil:
		content = doc.FinalArticle().WikiContent
	case doc.Draft() != nil:
		content = doc.Draft().WikiContent
	default:
		return "", nil
	}

	if err := os.MkdirAll(e.Publisher.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("pipeline: creating output directory: %w", err)
	}

	name := agent.PageName(doc.Brief().Topic)
	filename := fmt.Sprintf("failed-%s-%d%s", name, doc.CreatedAt().Unix(), e.Publisher.FileExtension)
	path := filepath.Join(e.Publisher.OutputDir, filename)

	body := fmt.Sprintf("failure: %v\nstate: %s\n\n%s", cause, doc.State(), content)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("pipeline: writing failure dump %s: %w", path, err)
	}
	return path, nil
}
