package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/54b3r/aimicro-go/internal/rag"
)

// passageNamespace scopes the name-based UUIDs given to passages.
var passageNamespace = uuid.MustParse("6f1f3c0e-2a55-4d8e-9d61-4a8f0c3b7e21")

// Passages converts extracted pages into one passage per non-empty page.
// Passage IDs are stable for a given filename and page number.
func Passages(doc *Document, pages []Page) []rag.Passage {
	out := make([]rag.Passage, 0, len(pages))
	for _, p := range pages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		out = append(out, rag.Passage{
			ID:      uuid.NewSHA1(passageNamespace, []byte(fmt.Sprintf("%s#%d", doc.Name, p.Number))).String(),
			Content: text,
			Source:  doc.Name,
			Page:    p.Number,
			Metadata: map[string]string{
				"source": doc.Name,
				"page":   strconv.Itoa(p.Number),
			},
		})
	}
	return out
}
