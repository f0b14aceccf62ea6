package extraction

import (
	"strconv"
	"strings"

	"github.com/antoinebi/antoine/internal/promptstore"
)

func (e *Extractor) buildPrompt(companyName string, pageCount, contentLength int, content string) string {
	tmpl := e.prompts.Get(promptstore.KeyExtraction)
	replacer := strings.NewReplacer(
		"{{.CompanyName}}", companyName,
		"{{.PageCount}}", strconv.Itoa(pageCount),
		"{{.ContentLength}}", strconv.Itoa(contentLength),
		"{{.AggregatedContent}}", content,
	)
	return replacer.Replace(tmpl)
}
