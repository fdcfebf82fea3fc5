package index

import (
	"fmt"
	"strings"

	"github.com/pdfsift/pdfsift/internal/extract"
	"github.com/pdfsift/pdfsift/internal/store"
)

// DocumentRecords extracts every page of doc into line records for path.
//
// Pages are numbered 1..P in order. Within a page, lines are trimmed,
// blank lines are dropped, and the surviving lines are numbered 1..L.
// Any page failure fails the whole document: a document either
// contributes all of its records or none.
func DocumentRecords(path string, doc extract.Document) ([]store.LineRecord, error) {
	var records []store.LineRecord

	pages := doc.PageCount()
	for page := 1; page <= pages; page++ {
		text, err := doc.PageText(page)
		if err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", page, path, err)
		}

		lineNum := 0
		for _, raw := range strings.Split(text, "\n") {
			content := strings.TrimSpace(raw)
			if content == "" {
				continue
			}
			lineNum++
			records = append(records, store.LineRecord{
				FilePath: path,
				Page:     page,
				Line:     lineNum,
				Content:  content,
			})
		}
	}

	return records, nil
}
