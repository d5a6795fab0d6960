package journal

import (
	"fmt"
	"time"
)

// MaxMemoryPages bounds the pages built from memories when no chapter exists.
const MaxMemoryPages = 10

// PlaceholderContent fills a memory page with neither prose nor description.
const PlaceholderContent = "A moment awaiting its mythic transformation..."

// Pages builds the manuscript. Chapters win when any exist; otherwise the
// first MaxMemoryPages memories (callers pass them newest first) become pages.
func Pages(chapters []Chapter, memories []Memory) []Page {
	if len(chapters) > 0 {
		pages := make([]Page, 0, len(chapters))
		for _, c := range chapters {
			title := fmt.Sprintf("Chapter %d", c.Number)
			if c.Title != nil && *c.Title != "" {
				title = *c.Title
			}
			content := ""
			if c.Content != nil {
				content = *c.Content
			}
			pages = append(pages, Page{
				Title:   title,
				Content: content,
				Date:    time.Unix(c.CreatedAt, 0).UTC().Format(DateLayout),
			})
		}
		return pages
	}

	n := min(len(memories), MaxMemoryPages)
	pages := make([]Page, 0, n)
	for _, m := range memories[:n] {
		pages = append(pages, Page{
			Title:   m.Title,
			Content: memoryPageContent(m),
			Date:    m.MemoryDate,
		})
	}
	return pages
}

func memoryPageContent(m Memory) string {
	if m.MythicProse != nil && *m.MythicProse != "" {
		return *m.MythicProse
	}
	if m.Description != nil && *m.Description != "" {
		return *m.Description
	}
	return PlaceholderContent
}
