package medtravel

import "testing"

func node(path, text string) TextNode {
	return TextNode{ID: NodeID(path, text), Path: path, Text: text, Hash: HashText(text)}
}

func TestDiffNodes_NoChanges(t *testing.T) {
	nodes := []TextNode{
		node("/html/body/main/h1[0]/text()[0]", "Knee Replacement"),
		node("/html/body/main/p[0]/text()[0]", "Recover in Istanbul"),
	}

	diff := DiffNodes(nodes, nodes)

	if diff.HasChanges() {
		t.Error("Expected no changes for identical content")
	}
	if len(diff.Unchanged) != 2 {
		t.Errorf("Expected 2 unchanged, got %d", len(diff.Unchanged))
	}
}

func TestDiffNodes_AllNew(t *testing.T) {
	newNodes := []TextNode{
		node("/html/body/main/h1[0]/text()[0]", "Knee Replacement"),
		node("/html/body/main/p[0]/text()[0]", "Recover in Istanbul"),
	}

	diff := DiffNodes(nil, newNodes)

	if len(diff.Added) != 2 {
		t.Errorf("Expected 2 added, got %d", len(diff.Added))
	}
	if len(diff.NeedsTranslation()) != 2 {
		t.Errorf("Expected 2 nodes needing translation, got %d", len(diff.NeedsTranslation()))
	}
}

func TestDiffNodes_AllRemoved(t *testing.T) {
	oldNodes := []TextNode{
		node("/html/body/main/h1[0]/text()[0]", "Knee Replacement"),
	}

	diff := DiffNodes(oldNodes, nil)

	if len(diff.Removed) != 1 {
		t.Errorf("Expected 1 removed, got %d", len(diff.Removed))
	}
	if len(diff.NeedsTranslation()) != 0 {
		t.Error("Removed nodes need no translation")
	}
}

func TestDiffNodes_Modified(t *testing.T) {
	oldNodes := []TextNode{
		node("/html/body/main/p[0]/text()[0]", "Loading doctors"),
		node("/html/body/main/h1[0]/text()[0]", "Our Doctors"),
	}
	newNodes := []TextNode{
		node("/html/body/main/p[0]/text()[0]", "Dr. Ayşe Demir, Orthopaedics"),
		node("/html/body/main/h1[0]/text()[0]", "Our Doctors"),
		node("/html/body/main/p[1]/text()[0]", "Dr. Mehmet Kaya, Cardiology"),
	}

	diff := DiffNodes(oldNodes, newNodes)
	stats := diff.Stats()

	if stats.Modified != 1 || stats.Added != 1 || stats.Unchanged != 1 || stats.Removed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if diff.Modified[0].Old.Text != "Loading doctors" {
		t.Errorf("unexpected modified old text %q", diff.Modified[0].Old.Text)
	}

	needs := diff.NeedsTranslation()
	if len(needs) != 2 {
		t.Fatalf("Expected 2 nodes needing translation, got %d", len(needs))
	}
	if needs[0].Text != "Dr. Mehmet Kaya, Cardiology" {
		t.Errorf("added nodes come first, got %q", needs[0].Text)
	}
}
