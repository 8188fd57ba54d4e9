// Package render turns processed articles into the Markdown and HTML digest.
package render

import (
	"strings"

	"DailyDigest/internal/domain"
)

// Distribute assigns record i to labels[i mod len(labels)], keeping label order.
func Distribute(title string, records []domain.Article, labels []string) domain.Digest {
	digest := domain.Digest{Title: title, Sections: make([]domain.Section, len(labels))}
	for i, label := range labels {
		digest.Sections[i].Label = label
	}
	if len(labels) == 0 {
		return digest
	}

	for i, record := range records {
		idx := i % len(labels)
		digest.Sections[idx].Articles = append(digest.Sections[idx].Articles, record)
	}
	return digest
}

// Markdown renders the digest; sections without articles get no heading.
func Markdown(digest domain.Digest) string {
	lines := []string{"# " + digest.Title, ""}

	for _, section := range digest.Sections {
		if len(section.Articles) == 0 {
			continue
		}
		lines = append(lines, "## "+section.Label, "")
		for _, article := range section.Articles {
			lines = append(lines, "### "+article.Title, "", article.Body(), "")
		}
	}

	return strings.Join(lines, "\n")
}
