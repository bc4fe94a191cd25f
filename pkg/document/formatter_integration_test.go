package document

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fvSolution")
	writeFile(t, path, testDictContent)

	doc, err := NewFromFile(path, nil)
	if err != nil {
		t.Fatalf("Failed to load document: %v", err)
	}

	if err := doc.Set("PISO.nCorrectors", 4); err != nil {
		t.Fatalf("Failed to set entry: %v", err)
	}
	if !doc.IsModified() {
		t.Fatal("Document should be modified")
	}

	if err := doc.Save(); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	if doc.IsModified() {
		t.Error("Saved document should not be modified")
	}

	saved, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	if !strings.Contains(string(saved), "nCorrectors     4;") {
		t.Errorf("Expected updated entry in saved file:\n%s", saved)
	}
	if doc.GetContent() != string(saved) {
		t.Error("Expected content to follow the saved text")
	}

	again, err := NewFromFile(path, nil)
	if err != nil {
		t.Fatalf("Failed to reload saved file: %v", err)
	}
	if !again.Dict().Equal(doc.Dict()) {
		t.Error("Saved file should parse back to the same dictionary")
	}

	if err := doc.Set("PISO.nCorrectors", 9); err != nil {
		t.Fatalf("Failed to set entry: %v", err)
	}
	if err := doc.Reload(); err != nil {
		t.Fatalf("Failed to reload: %v", err)
	}
	if doc.IsModified() || doc.FindEntry("PISO.nCorrectors").Tokens()[0].Int != 4 {
		t.Error("Reload should discard unsaved changes")
	}

	copyPath := filepath.Join(dir, "copy")
	if err := doc.SaveAs(copyPath); err != nil {
		t.Fatalf("Failed to save copy: %v", err)
	}
	if doc.GetFilename() != copyPath {
		t.Errorf("Expected filename %s, got %s", copyPath, doc.GetFilename())
	}
}

func TestSaveWithoutFile(t *testing.T) {
	doc, err := NewFromContent("", "a 1;", nil)
	if err != nil {
		t.Fatalf("Failed to create document: %v", err)
	}
	if err := doc.Save(); err == nil {
		t.Error("Expected an error saving a document without a file")
	}
}

func TestExport(t *testing.T) {
	doc := newTestDocument(t)

	data, err := doc.Export("json")
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Export is not valid JSON: %v\n%s", err, data)
	}
	piso, ok := decoded["PISO"].(map[string]interface{})
	if !ok || piso["nCorrectors"] != float64(2) {
		t.Errorf("Unexpected PISO section %v", decoded["PISO"])
	}

	native, err := doc.Export("foam")
	if err != nil {
		t.Fatalf("Failed to export: %v", err)
	}
	text, _ := doc.SaveToString()
	if string(native) != text {
		t.Error("Native export should match the saved text")
	}

	if _, err := doc.Export("ini"); err == nil {
		t.Error("Expected an error for an unknown format")
	}
}
