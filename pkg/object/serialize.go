package object

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Blob
// ---------------------------------------------------------------------------

// MarshalBlob serializes a Blob to raw bytes (identity).
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// UnmarshalBlob deserializes raw bytes into a Blob.
func UnmarshalBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}

// ---------------------------------------------------------------------------
// TreeObj
// ---------------------------------------------------------------------------

// ValidateEntryName rejects names that would break the tree line format or
// escape the directory they are checked out into.
func ValidateEntryName(name string) error {
	switch name {
	case "", ".", "..":
		return fmt.Errorf("invalid tree entry name %q", name)
	}
	if strings.ContainsAny(name, "/\t\n\x00") {
		return fmt.Errorf("invalid tree entry name %q", name)
	}
	return nil
}

// MarshalTree serializes a TreeObj. Entries are sorted by Name for
// deterministic output. Each entry is one line:
//
//	mode type hash\tname
//
// The name follows a tab, which ValidateEntryName keeps out of names.
func MarshalTree(tr *TreeObj) ([]byte, error) {
	sorted := make([]TreeEntry, len(tr.Entries))
	copy(sorted, tr.Entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	var buf bytes.Buffer
	for i, e := range sorted {
		if err := ValidateEntryName(e.Name); err != nil {
			return nil, fmt.Errorf("marshal tree: %w", err)
		}
		if i > 0 && sorted[i-1].Name == e.Name {
			return nil, fmt.Errorf("marshal tree: duplicate entry %q", e.Name)
		}
		mode := e.Mode
		if mode == "" {
			mode = modeForType(e.Type)
		}
		fmt.Fprintf(&buf, "%s %s %s\t%s\n", mode, e.Type, e.Hash, e.Name)
	}
	return buf.Bytes(), nil
}

func modeForType(t ObjectType) string {
	if t == TypeTree {
		return TreeModeDir
	}
	return TreeModeFile
}

// UnmarshalTree parses a TreeObj from its serialized form.
func UnmarshalTree(data []byte) (*TreeObj, error) {
	tr := &TreeObj{}
	text := string(data)
	if text == "" {
		return tr, nil
	}
	if !strings.HasSuffix(text, "\n") {
		return nil, fmt.Errorf("unmarshal tree: missing trailing newline")
	}
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		meta, name, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, fmt.Errorf("unmarshal tree: malformed entry %q", line)
		}
		parts := strings.Split(meta, " ")
		if len(parts) != 3 {
			return nil, fmt.Errorf("unmarshal tree: malformed entry %q", line)
		}
		entry := TreeEntry{
			Mode: parts[0],
			Type: ObjectType(parts[1]),
			Hash: Hash(parts[2]),
			Name: name,
		}
		if err := validateTreeEntry(entry); err != nil {
			return nil, fmt.Errorf("unmarshal tree: %w", err)
		}
		if n := len(tr.Entries); n > 0 && tr.Entries[n-1].Name >= name {
			return nil, fmt.Errorf("unmarshal tree: entry %q out of order", name)
		}
		tr.Entries = append(tr.Entries, entry)
	}
	return tr, nil
}

func validateTreeEntry(e TreeEntry) error {
	if err := ValidateEntryName(e.Name); err != nil {
		return err
	}
	switch {
	case e.Type == TypeBlob && e.Mode == TreeModeFile:
	case e.Type == TypeTree && e.Mode == TreeModeDir:
	default:
		return fmt.Errorf("entry %q: unknown mode/type %s %s", e.Name, e.Mode, e.Type)
	}
	return ValidateHash(e.Hash)
}

// ---------------------------------------------------------------------------
// Signature
// ---------------------------------------------------------------------------

// String renders the signature as "name <email> unix tz".
func (s Signature) String() string {
	tz := s.Timezone
	if tz == "" {
		tz = "+0000"
	}
	return fmt.Sprintf("%s <%s> %d %s", s.Name, s.Email, s.When, tz)
}

// ParseSignature parses the "name <email> unix tz" form.
func ParseSignature(raw string) (Signature, error) {
	open := strings.LastIndexByte(raw, '<')
	end := strings.LastIndexByte(raw, '>')
	if open < 0 || end < open {
		return Signature{}, fmt.Errorf("parse signature %q: missing <email>", raw)
	}
	fields := strings.Fields(raw[end+1:])
	if len(fields) != 2 {
		return Signature{}, fmt.Errorf("parse signature %q: want timestamp and timezone", raw)
	}
	when, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Signature{}, fmt.Errorf("parse signature %q: bad timestamp: %w", raw, err)
	}
	return Signature{
		Name:     strings.TrimSpace(raw[:open]),
		Email:    raw[open+1 : end],
		When:     when,
		Timezone: fields[1],
	}, nil
}

// ---------------------------------------------------------------------------
// CommitObj
// ---------------------------------------------------------------------------

// MarshalCommit serializes a CommitObj in fixed field order:
//
//	tree H
//	parent H     (optional)
//	author NAME <EMAIL> UNIX TZ
//
//	message
func MarshalCommit(c *CommitObj) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "tree %s\n", string(c.TreeHash))
	if c.Parent != "" {
		fmt.Fprintf(&buf, "parent %s\n", string(c.Parent))
	}
	fmt.Fprintf(&buf, "author %s\n", c.Author)
	buf.WriteByte('\n')
	buf.WriteString(c.Message)
	return buf.Bytes()
}

// UnmarshalCommit parses a CommitObj from its serialized form.
func UnmarshalCommit(data []byte) (*CommitObj, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("unmarshal commit: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &CommitObj{Message: message}
	var sawTree, sawAuthor bool
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("unmarshal commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			if sawTree {
				return nil, fmt.Errorf("unmarshal commit: duplicate tree")
			}
			if err := ValidateHash(Hash(val)); err != nil {
				return nil, fmt.Errorf("unmarshal commit: tree: %w", err)
			}
			c.TreeHash = Hash(val)
			sawTree = true
		case "parent":
			if c.Parent != "" {
				return nil, fmt.Errorf("unmarshal commit: more than one parent")
			}
			if err := ValidateHash(Hash(val)); err != nil {
				return nil, fmt.Errorf("unmarshal commit: parent: %w", err)
			}
			c.Parent = Hash(val)
		case "author":
			sig, err := ParseSignature(val)
			if err != nil {
				return nil, fmt.Errorf("unmarshal commit: %w", err)
			}
			c.Author = sig
			sawAuthor = true
		default:
			return nil, fmt.Errorf("unmarshal commit: unknown header key %q", key)
		}
	}
	if !sawTree {
		return nil, fmt.Errorf("unmarshal commit: missing tree")
	}
	if !sawAuthor {
		return nil, fmt.Errorf("unmarshal commit: missing author")
	}
	return c, nil
}
