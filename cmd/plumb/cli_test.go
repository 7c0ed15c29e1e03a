package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plumbvcs/plumb/pkg/object"
	"github.com/spf13/cobra"
)

func testEnv(t *testing.T) *cmdEnv {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "repo")
	env := &cmdEnv{dir: &dir}
	if _, err := runCmd(newInitCmd(env), nil); err != nil {
		t.Fatalf("init: %v", err)
	}
	return env
}

func runCmd(cmd *cobra.Command, stdin []byte, args ...string) (string, error) {
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(bytes.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHashObjectAndCatFile(t *testing.T) {
	env := testEnv(t)

	out, err := runCmd(newHashObjectCmd(env), []byte("hello"), "-w")
	if err != nil {
		t.Fatalf("hash-object: %v", err)
	}
	id := strings.TrimSpace(out)
	if want := "b6fc4c620b67d95f953a5c1c1230aaab5db5a1b0"; id != want {
		t.Errorf("hash-object = %s, want %s", id, want)
	}

	out, err = runCmd(newCatFileCmd(env), nil, id)
	if err != nil {
		t.Fatalf("cat-file: %v", err)
	}
	if out != "hello" {
		t.Errorf("cat-file = %q, want %q", out, "hello")
	}

	out, err = runCmd(newCatFileCmd(env), nil, "-t", id)
	if err != nil {
		t.Fatalf("cat-file -t: %v", err)
	}
	if strings.TrimSpace(out) != "blob" {
		t.Errorf("cat-file -t = %q, want blob", strings.TrimSpace(out))
	}
}

func TestHashObjectWithoutWriteDoesNotStore(t *testing.T) {
	env := testEnv(t)

	out, err := runCmd(newHashObjectCmd(env), []byte("ephemeral"))
	if err != nil {
		t.Fatalf("hash-object: %v", err)
	}
	id := strings.TrimSpace(out)

	if _, err := runCmd(newCatFileCmd(env), nil, id); err == nil {
		t.Error("cat-file found an object that was never written")
	}
}

func TestMktreeAndLsTree(t *testing.T) {
	env := testEnv(t)

	out, err := runCmd(newHashObjectCmd(env), []byte("content\n"), "-w")
	if err != nil {
		t.Fatalf("hash-object: %v", err)
	}
	blob := strings.TrimSpace(out)

	listing := "100644 " + blob + "\ta.txt\n100644 " + blob + "\tdir/b.txt\n"
	out, err = runCmd(newMktreeCmd(env), []byte(listing))
	if err != nil {
		t.Fatalf("mktree: %v", err)
	}
	root := strings.TrimSpace(out)

	out, err = runCmd(newLsTreeCmd(env), nil, "-r", root)
	if err != nil {
		t.Fatalf("ls-tree: %v", err)
	}
	if !strings.Contains(out, "a.txt") || !strings.Contains(out, "dir/b.txt") {
		t.Errorf("ls-tree -r output missing paths:\n%s", out)
	}
}

func TestParseMktreeLine(t *testing.T) {
	hex := "b6fc4c620b67d95f953a5c1c1230aaab5db5a1b0"

	f, err := parseMktreeLine("100644 " + hex + "\tsrc/main.go")
	if err != nil {
		t.Fatalf("parseMktreeLine: %v", err)
	}
	if f.Path != "src/main.go" || f.Mode != "100644" || f.ID.String() != hex {
		t.Errorf("parsed entry = %+v", f)
	}

	bad := []string{
		"100644 " + hex + " no-tab",
		"100644\tmissing-id",
		"100644 nothex\tfile",
	}
	for _, line := range bad {
		if _, err := parseMktreeLine(line); err == nil {
			t.Errorf("parseMktreeLine(%q) accepted bad input", line)
		}
	}
}

func TestRefStoreCAS(t *testing.T) {
	r := &refStore{root: t.TempDir()}
	a := object.HashObject(object.TypeBlob, []byte("a"))
	b := object.HashObject(object.TypeBlob, []byte("b"))

	if err := r.UpdateRef("refs/heads/main", a, nil); err != nil {
		t.Fatalf("create ref: %v", err)
	}
	if got, err := r.ResolveRef("main"); err != nil || got != a {
		t.Fatalf("ResolveRef = %s, %v, want %s", got, err, a)
	}

	// Creating again without an expected old value must refuse.
	if err := r.UpdateRef("refs/heads/main", b, nil); !errors.Is(err, object.ErrConflict) {
		t.Errorf("blind create over existing ref: error = %v, want ErrConflict", err)
	}

	// A stale expected value must refuse.
	if err := r.UpdateRef("refs/heads/main", b, &b); !errors.Is(err, object.ErrConflict) {
		t.Errorf("stale CAS: error = %v, want ErrConflict", err)
	}

	if err := r.UpdateRef("refs/heads/main", b, &a); err != nil {
		t.Fatalf("CAS update: %v", err)
	}
	if got, _ := r.ResolveRef("main"); got != b {
		t.Errorf("ref after CAS = %s, want %s", got, b)
	}
}

func TestRefStoreSymbolicHEAD(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "repo")
	env := &cmdEnv{dir: &dir}
	if _, err := runCmd(newInitCmd(env), nil); err != nil {
		t.Fatalf("init: %v", err)
	}

	r := env.refs()
	if target := r.Target(); target != "refs/heads/main" {
		t.Errorf("HEAD target = %q, want refs/heads/main", target)
	}

	id := object.HashObject(object.TypeBlob, []byte("x"))
	if err := r.UpdateRef("refs/heads/main", id, nil); err != nil {
		t.Fatalf("UpdateRef: %v", err)
	}
	if got, err := r.ResolveRef("HEAD"); err != nil || got != id {
		t.Errorf("ResolveRef(HEAD) = %s, %v, want %s", got, err, id)
	}
}

func TestConfigMergeOptions(t *testing.T) {
	cfg := &config{}
	cfg.Merge.Automerge = "theirs"
	cfg.Merge.FastForward = "only"
	cfg.Merge.DetectRenames = true
	cfg.Merge.RenameThreshold = 70

	opts, err := cfg.mergeOptions()
	if err != nil {
		t.Fatalf("mergeOptions: %v", err)
	}
	if !opts.DetectRenames || opts.RenameThreshold != 70 {
		t.Errorf("rename settings not applied: %+v", opts)
	}

	cfg.Merge.Automerge = "bogus"
	if _, err := cfg.mergeOptions(); err == nil {
		t.Error("accepted unknown automerge mode")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if !cfg.Merge.DetectRenames {
		t.Error("rename detection should default on")
	}
}
