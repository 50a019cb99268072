// Package compatibility parses the compatibility file an installed
// version declares (which project versions it can open), grounded on VersionCompatibility/parse_compatibility_file_line.hpp.
// No .cpp implementation of the line grammar survives in
// original_source/, so the exact grammar below is an invented but
// documented design decision (see DESIGN.md); the three-way shape of
// the result (an exact version, a semi-incompatibility carrying an
// upgrade instruction, or a blanket incompatibility) is taken directly
// from the header's std::variant.
package compatibility

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"launcher/internal/launcherpaths"
	"launcher/internal/versionname"
)

// Kind discriminates the three Entry variants.
type Kind int

const (
	// Exact means the project is known compatible with this specific
	// version.
	Exact Kind = iota
	// SemiIncompatible means the project can be opened but needs a
	// documented upgrade step first.
	SemiIncompatible
	// Incompatible means the project cannot be opened with this
	// version at all.
	Incompatible
)

// Entry is one parsed line of a compatibility file: a tagged union
// matching the original's CompatibilityEntry variant.
type Entry struct {
	kind              Kind
	version           versionname.Name
	upgradeInstruction string
}

// NewExact builds an Exact entry.
func NewExact(v versionname.Name) Entry { return Entry{kind: Exact, version: v} }

// NewSemiIncompatible builds a SemiIncompatible entry carrying the
// upgrade instruction text, matching SemiIncompatibility::upgrade_instruction.
func NewSemiIncompatible(instruction string) Entry {
	return Entry{kind: SemiIncompatible, upgradeInstruction: instruction}
}

// NewIncompatible builds a blanket Incompatible entry.
func NewIncompatible() Entry { return Entry{kind: Incompatible} }

// Kind reports which variant this entry holds.
func (e Entry) Kind() Kind { return e.kind }

// Version is only meaningful when Kind() == Exact.
func (e Entry) Version() versionname.Name { return e.version }

// UpgradeInstruction is only meaningful when Kind() == SemiIncompatible.
func (e Entry) UpgradeInstruction() string { return e.upgradeInstruction }

// ParseLine parses a single compatibility-file line into zero or one
// entries, matching parse_compatibility_file_line's signature (which
// appends to a vector rather than always producing exactly one entry,
// since blank lines and comments produce none).
//
// Grammar (invented; no .cpp source for this survives in
// original_source/):
//
//	""                  -> no entry (blank line)
//	"# ..."             -> no entry (comment)
//	"incompatible"      -> Incompatible (case-insensitive)
//	"semi: <text>"      -> SemiIncompatible{instruction: <text>}
//	"<major.minor.patch>[-experimental|-beta]" -> Exact{version}
//
// Any line that matches none of the above is treated as a comment
// rather than an error, matching the original's tolerant style of
// never throwing on malformed input (VersionName itself never
// rejects a string; it just marks it invalid).
func ParseLine(line string, entries *[]Entry) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	if strings.EqualFold(line, "incompatible") {
		*entries = append(*entries, NewIncompatible())
		return
	}

	if rest, ok := cutPrefixFold(line, "semi:"); ok {
		*entries = append(*entries, NewSemiIncompatible(strings.TrimSpace(rest)))
		return
	}

	v := versionname.Parse(line)
	if v.IsValid() {
		*entries = append(*entries, NewExact(v))
	}
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return "", false
	}
	return s[len(prefix):], true
}

// ParseFile reads every line from r and returns the parsed entries in
// file order.
func ParseFile(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		ParseLine(scanner.Text(), &entries)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read compatibility file: %w", err)
	}
	return entries, nil
}

// ReadEntriesForVersion reads and parses the compatibility file declared
// for versionName (internal/launcherpaths.CompatibilityFilePath). A
// version with no compatibility file declares nothing, which
// IsCompatibleWith already treats as compatible by default, so a
// missing file returns an empty, error-free entry list rather than
// failing: most installed versions will never ship one.
func ReadEntriesForVersion(versionName string) ([]Entry, error) {
	f, err := os.Open(launcherpaths.CompatibilityFilePath(versionName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open compatibility file for %s: %w", versionName, err)
	}
	defer f.Close()
	return ParseFile(f)
}

// IsCompatibleWith reports whether running is compatible according to
// entries, which are checked in file order and the first deciding one
// wins: an Exact entry equal to running makes it compatible; a
// SemiIncompatible entry (which carries no version, so it applies to
// any version) makes it incompatible and returns its upgrade
// instruction; an Incompatible entry makes it incompatible with no
// instruction. Exact entries for other versions decide nothing, and
// with no deciding entry (including no entries at all) running is
// compatible by default.
func IsCompatibleWith(entries []Entry, running versionname.Name) (compatible bool, upgradeInstruction string) {
	for _, e := range entries {
		switch e.kind {
		case Exact:
			if e.version.Equal(running) {
				return true, ""
			}
		case SemiIncompatible:
			// A semi-incompatibility with no attached version applies
			// broadly: any version not explicitly listed as Exact
			// compatible needs the upgrade step.
			return false, e.upgradeInstruction
		case Incompatible:
			return false, ""
		}
	}
	return true, ""
}
