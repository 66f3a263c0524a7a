// Package docgen renders the node registry as markdown and keeps a README section in sync with it.
package docgen

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/richinsley/remix2go/nodeapi"
)

// headerLevel returns the number of '#' of the first word of a markdown header
func headerLevel(header string) int {
	style := strings.SplitN(strings.TrimSpace(header), " ", 2)[0]
	return strings.Count(style, "#")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func group(category string) string {
	if i := strings.LastIndex(category, "/"); i >= 0 {
		return category[i+1:]
	}
	return category
}

// Render lists the nodes of r grouped by the last segment of their category, one header level
// below sectionHeader. Groups appear in the order their first node id sorts.
func Render(r *nodeapi.Registry, sectionHeader string) string {
	level := headerLevel(sectionHeader)

	var order []string
	groups := map[string][]*nodeapi.Descriptor{}
	for _, id := range r.IDs() {
		d, _ := r.Get(id)
		g := group(d.Category)
		if _, ok := groups[g]; !ok {
			order = append(order, g)
		}
		groups[g] = append(groups[g], d)
	}

	var b strings.Builder
	for _, g := range order {
		fmt.Fprintf(&b, "%s %s\n", strings.Repeat("#", level+1), capitalize(g))
		for _, d := range groups[g] {
			name := d.DisplayName
			if name == "" {
				name = d.ID
			}
			desc := strings.TrimSpace(d.Description)
			if i := strings.IndexByte(desc, '\n'); i >= 0 {
				desc = strings.TrimSpace(desc[:i])
			}
			if desc != "" {
				fmt.Fprintf(&b, "- **%s**: %s\n", name, desc)
			} else {
				fmt.Fprintf(&b, "**%s**\n", name)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// isSameLevelHeader reports whether line opens a header of exactly level
func isSameLevelHeader(line string, level int) bool {
	prefix := strings.Repeat("#", level)
	return strings.HasPrefix(line, prefix) && len(line) > level && line[level] != '#'
}

// ReplaceSection replaces everything between sectionHeader and the next header of the same
// level with contents. The section runs to the end of the document when no such header follows.
func ReplaceSection(doc []byte, sectionHeader string, contents string) ([]byte, error) {
	header := strings.TrimSpace(sectionHeader)
	level := headerLevel(header)
	lines := strings.SplitAfter(string(doc), "\n")

	start, end := -1, len(lines)
	for i, line := range lines {
		if start < 0 {
			if strings.TrimSpace(line) == header {
				start = i + 1
			}
			continue
		}
		if isSameLevelHeader(line, level) {
			end = i
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("section %q not found", header)
	}

	var out bytes.Buffer
	for _, l := range lines[:start] {
		out.WriteString(l)
	}
	if start > 0 && !strings.HasSuffix(lines[start-1], "\n") {
		out.WriteString("\n")
	}
	out.WriteString(contents)
	for _, l := range lines[end:] {
		out.WriteString(l)
	}
	return out.Bytes(), nil
}

// UpdateReadme rewrites the section of the README at path with the documentation of r
func UpdateReadme(path string, r *nodeapi.Registry, sectionHeader string) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	updated, err := ReplaceSection(doc, sectionHeader, Render(r, sectionHeader))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return os.WriteFile(path, updated, 0o644)
}
