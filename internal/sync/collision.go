package sync

import (
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/randalmurphal/metis/internal/db"
	"github.com/randalmurphal/metis/internal/document"
	"github.com/randalmurphal/metis/internal/shortcode"
)

// resolveCollisions detects documents of the same type sharing a short code
// (phase S5) and renumbers all but one of each colliding set. The winner is
// the document at the smallest filesystem depth, ties broken by
// lexicographic filepath; every loser is assigned a freshly allocated code.
//
// Concurrent writers (branches merged by git) allocate codes independently;
// this pass makes them consistent after the fact.
func (e *Engine) resolveCollisions() ([]Result, error) {
	rows, err := e.db.AllDocuments()
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]*db.Row)
	for _, row := range rows {
		if row.ShortCode == "" {
			continue
		}
		key := row.DocumentType + "\x00" + row.ShortCode
		groups[key] = append(groups[key], row)
	}

	// Colliding types need their counters raised past every observed suffix
	// first, or renumbering could hand out a code that is itself taken.
	collidingTypes := make(map[document.Type]bool)
	for _, group := range groups {
		if len(group) > 1 {
			collidingTypes[document.Type(group[0].DocumentType)] = true
		}
	}
	if len(collidingTypes) == 0 {
		return nil, nil
	}
	maxima, err := e.observedMaxima()
	if err != nil {
		return nil, err
	}
	for docType := range collidingTypes {
		if _, err := e.cfg.SetCounterIfLower(docType, maxima[docType]); err != nil {
			return nil, err
		}
	}

	// Deterministic ordering across groups.
	keys := make([]string, 0, len(groups))
	for key, group := range groups {
		if len(group) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var results []Result
	for _, key := range keys {
		group := groups[key]
		sort.Slice(group, func(i, j int) bool {
			di, dj := pathDepth(group[i].Filepath), pathDepth(group[j].Filepath)
			if di != dj {
				return di < dj
			}
			return group[i].Filepath < group[j].Filepath
		})

		// group[0] keeps the code; every other entry is renumbered.
		for _, loser := range group[1:] {
			renumbered, err := e.renumber(loser)
			if err != nil {
				results = append(results, Result{Kind: ResultError, Filepath: loser.Filepath, Err: err})
				continue
			}
			results = append(results, renumbered...)
		}
	}
	return results, nil
}

// pathDepth counts the path separators in a workspace-relative path.
func pathDepth(relPath string) int {
	return strings.Count(relPath, "/")
}

// renumber assigns a fresh short code to the losing document, rewrites its
// file, and fixes blocked_by references to the old code in its directory
// subtree siblings.
func (e *Engine) renumber(loser *db.Row) ([]Result, error) {
	docType := document.Type(loser.DocumentType)
	oldParsed, err := shortcode.Parse(loser.ShortCode)
	if err != nil {
		return nil, err
	}

	number, err := e.cfg.NextNumber(docType)
	if err != nil {
		return nil, err
	}
	newCode := shortcode.Format(oldParsed.Prefix, docType, number)

	absPath := filepath.Join(e.workspaceDir, filepath.FromSlash(loser.Filepath))
	doc, err := document.FromFile(absPath)
	if err != nil {
		return nil, err
	}
	oldCode := doc.ShortCode
	doc.ShortCode = newCode
	doc.Touch(time.Now())
	if err := doc.SaveToFile(absPath); err != nil {
		return nil, err
	}
	if _, err := e.SyncFile(loser.Filepath); err != nil {
		return nil, err
	}

	results := []Result{{
		Kind:     ResultRenumbered,
		Filepath: loser.Filepath,
		OldCode:  oldCode,
		NewCode:  newCode,
	}}

	rewritten, err := e.rewriteBlockedByReferences(loser.Filepath, oldCode, newCode)
	if err != nil {
		return nil, err
	}
	return append(results, rewritten...), nil
}

// rewriteBlockedByReferences updates blocked_by entries pointing at oldCode
// in documents under the renumbered file's directory subtree.
func (e *Engine) rewriteBlockedByReferences(loserPath, oldCode, newCode string) ([]Result, error) {
	subtree := filepath.ToSlash(filepath.Dir(loserPath))
	rows, err := e.db.AllDocuments()
	if err != nil {
		return nil, err
	}

	var results []Result
	for _, row := range rows {
		if row.Filepath == loserPath {
			continue
		}
		if subtree != "." && !strings.HasPrefix(row.Filepath, subtree+"/") {
			continue
		}

		absPath := filepath.Join(e.workspaceDir, filepath.FromSlash(row.Filepath))
		doc, err := document.FromFile(absPath)
		if err != nil {
			results = append(results, Result{Kind: ResultError, Filepath: row.Filepath, Err: err})
			continue
		}

		changed := false
		for i, ref := range doc.BlockedBy {
			if ref == oldCode {
				doc.BlockedBy[i] = newCode
				changed = true
			}
		}
		if !changed {
			continue
		}

		doc.Touch(time.Now())
		if err := doc.SaveToFile(absPath); err != nil {
			return nil, err
		}
		if _, err := e.SyncFile(row.Filepath); err != nil {
			return nil, err
		}
		results = append(results, Result{Kind: ResultUpdated, Filepath: row.Filepath})
	}
	return results, nil
}

// observedMaxima computes, per document type, the largest short-code suffix
// present in the index.
func (e *Engine) observedMaxima() (map[document.Type]uint32, error) {
	rows, err := e.db.AllDocuments()
	if err != nil {
		return nil, err
	}
	maxima := make(map[document.Type]uint32)
	for _, row := range rows {
		parsed, err := shortcode.Parse(row.ShortCode)
		if err != nil {
			continue
		}
		docType := document.Type(row.DocumentType)
		if parsed.Number > maxima[docType] {
			maxima[docType] = parsed.Number
		}
	}
	return maxima, nil
}
