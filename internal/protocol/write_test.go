package protocol_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rickfelix/ehg-leo/internal/protocol"
)

func TestWriteDocuments_SkipsUnchanged(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	docs := map[string]string{
		protocol.CoreFile:   "core\n",
		protocol.RouterFile: "router\n",
	}

	changed, err := protocol.WriteDocuments(dir, docs)
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	if want := []string{protocol.RouterFile, protocol.CoreFile}; !reflect.DeepEqual(changed, want) {
		t.Errorf("first write changed %v, want %v", changed, want)
	}

	changed, err = protocol.WriteDocuments(dir, docs)
	if err != nil {
		t.Fatalf("second write: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("identical content rewrote %v", changed)
	}

	docs[protocol.CoreFile] = "core v2\n"
	changed, err = protocol.WriteDocuments(dir, docs)
	if err != nil {
		t.Fatalf("third write: %v", err)
	}
	if want := []string{protocol.CoreFile}; !reflect.DeepEqual(changed, want) {
		t.Errorf("third write changed %v, want %v", changed, want)
	}

	got, err := os.ReadFile(filepath.Join(dir, protocol.CoreFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "core v2\n" {
		t.Errorf("content = %q", got)
	}
}
