package sevenzip

import (
	"strconv"
	"strings"
)

// parseListing converts `7z l -slt` output into entries. The technical
// listing prints one "Path = ..." block per member with Size and Attributes
// lines; everything before the first Path line is banner text.
func parseListing(output string) []Entry {
	var entries []Entry
	var current *Entry
	seenSeparator := false

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "----------"):
			seenSeparator = true
		case strings.HasPrefix(line, "Path = "):
			if !seenSeparator {
				// The banner repeats the archive's own path before the
				// member table separator.
				continue
			}
			if current != nil {
				entries = append(entries, *current)
			}
			current = &Entry{Path: normalizePath(strings.TrimPrefix(line, "Path = "))}
		case current != nil && strings.HasPrefix(line, "Size = "):
			if size, err := strconv.ParseInt(strings.TrimPrefix(line, "Size = "), 10, 64); err == nil {
				current.Size = size
			}
		case current != nil && strings.HasPrefix(line, "Attributes = "):
			current.IsDir = strings.Contains(strings.TrimPrefix(line, "Attributes = "), "D")
		case current != nil && strings.HasPrefix(line, "Folder = "):
			if strings.TrimPrefix(line, "Folder = ") == "+" {
				current.IsDir = true
			}
		}
	}
	if current != nil {
		entries = append(entries, *current)
	}
	return entries
}

func normalizePath(path string) string {
	return strings.ReplaceAll(strings.TrimSpace(path), "\\", "/")
}

// TopLevelNames returns the distinct first path segments across entries,
// in first-seen order.
func TopLevelNames(entries []Entry) []string {
	seen := make(map[string]struct{}, len(entries))
	var names []string
	for _, entry := range entries {
		segment := entry.Path
		if idx := strings.IndexByte(segment, '/'); idx >= 0 {
			segment = segment[:idx]
		}
		if segment == "" {
			continue
		}
		if _, ok := seen[segment]; ok {
			continue
		}
		seen[segment] = struct{}{}
		names = append(names, segment)
	}
	return names
}
