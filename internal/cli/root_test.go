package cli

import (
	"sort"
	"testing"

	"github.com/JeNeSuisPasDave/MarkdownTools/pkg/merge"
)

func TestExportTargetNamesSorted(t *testing.T) {
	names := exportTargetNames()
	if len(names) != len(exportTargets) {
		t.Fatalf("got %d names, want %d", len(names), len(exportTargets))
	}
	if !sort.StringsAreSorted(names) {
		t.Errorf("exportTargetNames() = %v, want sorted", names)
	}
}

func TestExportTargetsAcceptedByMerger(t *testing.T) {
	// every extension the CLI offers must be one the engine accepts
	for name, ext := range exportTargets {
		if _, err := merge.New(merge.Options{ExportExtension: ext}); err != nil {
			t.Errorf("target %s maps to rejected extension %s: %v", name, ext, err)
		}
	}
}
