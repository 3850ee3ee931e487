package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeManifest(t *testing.T, root string, m Manifest) string {
	t.Helper()
	dir := filepath.Join(root, m.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "plugin.json"), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return dir
}

func TestManager_Discover(t *testing.T) {
	root := t.TempDir()
	want := Manifest{
		Name:        "chime",
		Version:     "1.0.0",
		Description: "Plays a sound",
		Executable:  "chime",
		Events:      []string{EventSelectionCorrect, EventSelectionWrong},
	}
	dir := writeManifest(t, root, want)

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}
	if diff := cmp.Diff(want, plugins[0].Manifest); diff != "" {
		t.Errorf("manifest mismatch (-want +got):\n%s", diff)
	}
	if plugins[0].Path != dir {
		t.Errorf("Path = %q, want %q", plugins[0].Path, dir)
	}
	if plugins[0].Executable != filepath.Join(dir, "chime") {
		t.Errorf("Executable = %q", plugins[0].Executable)
	}
}

func TestManager_Discover_Skips(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, Manifest{Name: "good", Executable: "good"})
	writeManifest(t, root, Manifest{Name: "noexec"})

	bad := filepath.Join(root, "bad")
	os.MkdirAll(bad, 0755)
	os.WriteFile(filepath.Join(bad, "plugin.json"), []byte("not valid json"), 0644)
	os.MkdirAll(filepath.Join(root, "empty"), 0755)
	os.WriteFile(filepath.Join(root, "stray.txt"), []byte("x"), 0644)

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}
	var names []string
	for _, p := range manager.List() {
		names = append(names, p.Manifest.Name)
	}
	if diff := cmp.Diff([]string{"good"}, names); diff != "" {
		t.Errorf("discovered (-want +got):\n%s", diff)
	}
}

func TestManager_Discover_NonExistentDir(t *testing.T) {
	manager := NewManager(filepath.Join(t.TempDir(), "missing"))
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed on non-existent dir: %v", err)
	}
	if n := len(manager.List()); n != 0 {
		t.Fatalf("expected 0 plugins, got %d", n)
	}
}

func TestManager_Get(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, Manifest{Name: "my-plugin", Version: "2.0.0", Executable: "bin"})

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}

	plugin, err := manager.Get("my-plugin")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if plugin.Manifest.Version != "2.0.0" {
		t.Errorf("Version = %q, want 2.0.0", plugin.Manifest.Version)
	}

	if _, err := manager.Get("nonexistent"); !errors.Is(err, ErrPluginNotFound) {
		t.Errorf("Get() error = %v, want ErrPluginNotFound", err)
	}
}

func TestManager_Subscribers(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, Manifest{Name: "b-both", Executable: "x", Events: []string{EventSelectionCorrect, EventSelectionWrong}})
	writeManifest(t, root, Manifest{Name: "a-correct", Executable: "x", Events: []string{EventSelectionCorrect}})
	writeManifest(t, root, Manifest{Name: "c-none", Executable: "x"})

	manager := NewManager(root)
	if err := manager.Discover(); err != nil {
		t.Fatal(err)
	}

	names := func(ps []*Plugin) []string {
		var out []string
		for _, p := range ps {
			out = append(out, p.Manifest.Name)
		}
		return out
	}
	if diff := cmp.Diff([]string{"a-correct", "b-both"}, names(manager.Subscribers(EventSelectionCorrect))); diff != "" {
		t.Errorf("correct subscribers (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b-both"}, names(manager.Subscribers(EventSelectionWrong))); diff != "" {
		t.Errorf("wrong subscribers (-want +got):\n%s", diff)
	}
}

func TestManager_PluginDir(t *testing.T) {
	if got := NewManager("/path/to/plugins").PluginDir(); got != "/path/to/plugins" {
		t.Errorf("PluginDir() = %q", got)
	}
}
