package repo

import (
	"bufio"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// IgnoreFileName is the per-repository ignore file at the working tree root.
const IgnoreFileName = ".mygitignore"

// IgnoreChecker decides whether a working-tree path is excluded from
// BuildTree and Status. The metadata directory is always ignored.
type IgnoreChecker struct {
	patterns []ignorePattern
}

type ignorePattern struct {
	pattern  string
	negated  bool
	dirOnly  bool
	hasSlash bool // match against the full relative path, not the base name
	regex    *regexp.Regexp
}

// NewIgnoreChecker reads .mygitignore from repoRoot if it exists.
func NewIgnoreChecker(repoRoot string) *IgnoreChecker {
	var lines []string
	if f, err := os.Open(filepath.Join(repoRoot, IgnoreFileName)); err == nil {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
	}
	return NewIgnoreCheckerFromLines(lines)
}

// NewIgnoreCheckerFromLines builds a checker from ignore-file lines.
func NewIgnoreCheckerFromLines(lines []string) *IgnoreChecker {
	ic := &IgnoreChecker{
		patterns: []ignorePattern{{pattern: MetaDirName, dirOnly: true}},
	}
	for _, line := range lines {
		if p := parseIgnoreLine(line); p != nil {
			ic.patterns = append(ic.patterns, *p)
		}
	}
	return ic
}

// parseIgnoreLine returns nil for blank lines and comments.
func parseIgnoreLine(line string) *ignorePattern {
	line = strings.TrimRight(line, " \t")
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	p := &ignorePattern{}
	if strings.HasPrefix(line, "!") {
		p.negated = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimRight(line, "/")
	}
	line = strings.TrimPrefix(line, "/")
	if line == "" {
		return nil
	}
	p.hasSlash = strings.Contains(line, "/")
	p.pattern = line
	if strings.Contains(line, "**") {
		if re, err := regexp.Compile(globToRegex(line)); err == nil {
			p.regex = re
		}
	}
	return p
}

// IsIgnored reports whether the slash-separated repo-relative path is
// ignored. isDir tells whether the path names a directory, which is what
// directory-only patterns match. The last matching pattern wins.
func (ic *IgnoreChecker) IsIgnored(rel string, isDir bool) bool {
	rel = filepath.ToSlash(rel)
	ignored := false
	for i := range ic.patterns {
		p := &ic.patterns[i]
		if p.matches(rel, isDir) {
			ignored = !p.negated
		}
	}
	return ignored
}

func (p *ignorePattern) matches(rel string, isDir bool) bool {
	// Ignoring a directory ignores everything beneath it.
	for dir := path.Dir(rel); dir != "."; dir = path.Dir(dir) {
		if p.matchPath(dir) {
			return true
		}
	}
	if p.dirOnly && !isDir {
		return false
	}
	return p.matchPath(rel)
}

func (p *ignorePattern) matchPath(rel string) bool {
	if p.hasSlash {
		return p.match(rel)
	}
	return p.match(path.Base(rel))
}

func (p *ignorePattern) match(target string) bool {
	if p.regex != nil {
		return p.regex.MatchString(target)
	}
	matched, _ := path.Match(p.pattern, target)
	return matched
}

func globToRegex(pattern string) string {
	var b strings.Builder
	b.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		ch := pattern[i]
		switch {
		case ch == '*' && i+1 < len(pattern) && pattern[i+1] == '*':
			if i+2 < len(pattern) && pattern[i+2] == '/' {
				// "**/" matches zero or more leading directories.
				b.WriteString("(?:.*/)?")
				i += 2
			} else {
				b.WriteString(".*")
				i++
			}
		case ch == '*':
			b.WriteString("[^/]*")
		case ch == '?':
			b.WriteString("[^/]")
		default:
			if strings.ContainsRune(`.+()|[]{}^$\`, rune(ch)) {
				b.WriteByte('\\')
			}
			b.WriteByte(ch)
		}
	}
	b.WriteString("$")
	return b.String()
}
