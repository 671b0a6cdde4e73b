package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"NewsDesk/internal/domain"
)

const maxContextChars = 6000

// Generation is the validated shape returned by the text-generation collaborator.
type Generation struct {
	Title    string
	Summary  string
	Content  string
	Category string
	Tags     []string
	Slug     string
}

type generationJSON struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	TagsEN   []string `json:"tags_en"`
	Slug     string   `json:"slug"`
}

// BuildPrompt renders the instruction sent to the generator for one queue item.
func BuildPrompt(text, pageContext, authorLabel string) string {
	var b strings.Builder
	b.WriteString("Rewrite the following item as a short news article.\n")
	b.WriteString("Respond with a single JSON object and nothing else, using the keys ")
	b.WriteString(`"title", "summary", "content", "category", "tags" (array of short English tags) and "slug".`)
	b.WriteString("\n\n")

	if authorLabel != "" {
		fmt.Fprintf(&b, "Source: %s\n\n", authorLabel)
	}

	b.WriteString("Item:\n")
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n")

	if ctx := strings.TrimSpace(pageContext); ctx != "" {
		ctx = truncateRunes(ctx, maxContextChars)
		b.WriteString("\nFull article for context:\n")
		b.WriteString(ctx)
		b.WriteString("\n")
	}

	return b.String()
}

// ParseGeneration validates the raw generator output. Anything that is not a JSON object
// with a title and summary is a domain.ErrTransformation.
func ParseGeneration(raw string) (Generation, error) {
	body := stripFences(raw)
	if body == "" {
		return Generation{}, fmt.Errorf("%w: empty response", domain.ErrTransformation)
	}

	var g generationJSON
	if err := json.Unmarshal([]byte(body), &g); err != nil {
		return Generation{}, fmt.Errorf("%w: decode response: %v", domain.ErrTransformation, err)
	}

	out := Generation{
		Title:    strings.TrimSpace(g.Title),
		Summary:  strings.TrimSpace(g.Summary),
		Content:  strings.TrimSpace(g.Content),
		Category: strings.TrimSpace(g.Category),
		Slug:     strings.TrimSpace(g.Slug),
		Tags:     g.Tags,
	}
	if len(out.Tags) == 0 {
		out.Tags = g.TagsEN
	}
	if out.Title == "" || out.Summary == "" {
		return Generation{}, fmt.Errorf("%w: missing title or summary", domain.ErrTransformation)
	}
	return out, nil
}

// stripFences removes a surrounding markdown code block and any text around the object.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

// truncateRunes cuts s to at most limit runes.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
