package medtravel

// DiffResult describes how the eligible text of a page changed between two scans.
type DiffResult struct {
	// Added holds nodes at paths that did not exist before.
	Added []TextNode

	// Removed holds nodes whose paths disappeared.
	Removed []TextNode

	// Unchanged holds nodes with the same path and original text.
	Unchanged []TextNode

	// Modified pairs nodes whose path survived but whose original text changed
	// (the rendering layer replaced the content in place).
	Modified []ModifiedNode
}

// ModifiedNode represents a text node whose content was re-rendered.
type ModifiedNode struct {
	Old TextNode
	New TextNode
}

// DiffStats contains summary statistics for a diff.
type DiffStats struct {
	Added     int
	Removed   int
	Unchanged int
	Modified  int
}

// Stats returns summary statistics for the diff.
func (d *DiffResult) Stats() DiffStats {
	return DiffStats{
		Added:     len(d.Added),
		Removed:   len(d.Removed),
		Unchanged: len(d.Unchanged),
		Modified:  len(d.Modified),
	}
}

// HasChanges returns true if there are any differences.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Modified) > 0
}

// NeedsTranslation returns the new and re-rendered nodes.
func (d *DiffResult) NeedsTranslation() []TextNode {
	result := make([]TextNode, 0, len(d.Added)+len(d.Modified))
	result = append(result, d.Added...)
	for _, m := range d.Modified {
		result = append(result, m.New)
	}
	return result
}

// DiffNodes compares two scans of the same page. Nodes are matched by path;
// order of the new scan is preserved in Added, Unchanged and Modified.
func DiffNodes(oldNodes, newNodes []TextNode) *DiffResult {
	result := &DiffResult{}

	oldByPath := make(map[string]TextNode, len(oldNodes))
	for _, node := range oldNodes {
		oldByPath[node.Path] = node
	}

	seen := make(map[string]bool, len(newNodes))
	for _, node := range newNodes {
		seen[node.Path] = true
		prev, ok := oldByPath[node.Path]
		switch {
		case !ok:
			result.Added = append(result.Added, node)
		case prev.Hash == node.Hash:
			result.Unchanged = append(result.Unchanged, node)
		default:
			result.Modified = append(result.Modified, ModifiedNode{Old: prev, New: node})
		}
	}

	for _, node := range oldNodes {
		if !seen[node.Path] {
			result.Removed = append(result.Removed, node)
		}
	}

	return result
}
