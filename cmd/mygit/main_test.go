package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odvcencio/mygit/pkg/object"
	"github.com/odvcencio/mygit/pkg/repo"
)

func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir(%s): %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("restore cwd %s: %v", wd, err)
		}
	})
}

// runMygit executes the root command with args and returns its stdout.
func runMygit(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	err := cmd.Execute()
	return output.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runMygit(t, args...)
	if err != nil {
		t.Fatalf("mygit %s: %v\noutput:\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func writeCmdFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll(%s): %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func initCmdRepo(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	chdirForTest(t, dir)
	out := mustRun(t, append([]string{"init"}, args...)...)
	if !strings.HasPrefix(out, "initialized empty mygit repository in ") {
		t.Fatalf("init output = %q", out)
	}
	return dir
}

func TestCommitAndLog(t *testing.T) {
	dir := initCmdRepo(t)
	writeCmdFile(t, filepath.Join(dir, "a.txt"), "one\n")
	mustRun(t, "add", "a.txt")
	out := mustRun(t, "commit", "-m", "first commit", "--author", "Test <test@example.com>")
	if !strings.HasPrefix(out, "[main ") || !strings.Contains(out, "] first commit") {
		t.Fatalf("commit output = %q", out)
	}

	writeCmdFile(t, filepath.Join(dir, "a.txt"), "two\n")
	mustRun(t, "add", "a.txt")
	mustRun(t, "commit", "-m", "second commit", "--author", "Test <test@example.com>")

	log := mustRun(t, "log", "--oneline")
	lines := strings.Split(strings.TrimSpace(log), "\n")
	if len(lines) != 2 {
		t.Fatalf("log returned %d lines, want 2\noutput:\n%s", len(lines), log)
	}
	if !strings.Contains(lines[0], "(HEAD -> main) second commit") {
		t.Fatalf("first log line = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "first commit") {
		t.Fatalf("second log line = %q", lines[1])
	}

	limited := mustRun(t, "log", "-n", "1")
	if !strings.Contains(limited, "Author: Test <test@example.com>") || strings.Contains(limited, "first commit") {
		t.Fatalf("log -n 1 output:\n%s", limited)
	}
}

func TestLogWithoutCommits(t *testing.T) {
	initCmdRepo(t)
	if out := mustRun(t, "log"); out != "no commits yet\n" {
		t.Fatalf("log output = %q", out)
	}
}

func TestCommitRequiresMessage(t *testing.T) {
	initCmdRepo(t)
	if _, err := runMygit(t, "commit"); err == nil {
		t.Fatal("commit without -m succeeded")
	}
}

func TestStatusCmd(t *testing.T) {
	dir := initCmdRepo(t)
	writeCmdFile(t, filepath.Join(dir, "tracked.txt"), "v1\n")
	writeCmdFile(t, filepath.Join(dir, "new.txt"), "new\n")
	mustRun(t, "add", "tracked.txt")
	writeCmdFile(t, filepath.Join(dir, "tracked.txt"), "v2\n")

	out := mustRun(t, "status")
	for _, want := range []string{"on main (no commits yet)", "+ tracked.txt", "~ tracked.txt", "? new.txt"} {
		if !strings.Contains(out, want) {
			t.Errorf("status output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "working tree clean") {
		t.Errorf("dirty tree reported clean:\n%s", out)
	}
}

func TestRmRequiresCached(t *testing.T) {
	dir := initCmdRepo(t)
	writeCmdFile(t, filepath.Join(dir, "a.txt"), "x\n")
	mustRun(t, "add", "a.txt")

	if _, err := runMygit(t, "rm", "a.txt"); err == nil {
		t.Fatal("rm without --cached succeeded")
	}
	mustRun(t, "rm", "--cached", "a.txt")
	if _, err := os.Stat(filepath.Join(dir, "a.txt")); err != nil {
		t.Fatalf("working file removed: %v", err)
	}
	out := mustRun(t, "status")
	if !strings.Contains(out, "? a.txt") {
		t.Fatalf("unstaged file not untracked:\n%s", out)
	}
}

func TestBranchAndCheckout(t *testing.T) {
	dir := initCmdRepo(t)
	writeCmdFile(t, filepath.Join(dir, "a.txt"), "main\n")
	mustRun(t, "add", "a.txt")
	mustRun(t, "commit", "-m", "on main", "--author", "Test <t@example.com>")

	mustRun(t, "branch", "feature")
	if out := mustRun(t, "branch"); out != "* main\n  feature\n" && out != "  feature\n* main\n" {
		t.Fatalf("branch list = %q", out)
	}

	mustRun(t, "checkout", "feature")
	writeCmdFile(t, filepath.Join(dir, "a.txt"), "feature\n")
	mustRun(t, "add", "a.txt")
	mustRun(t, "commit", "-m", "on feature", "--author", "Test <t@example.com>")

	out := mustRun(t, "checkout", "main")
	if out != "switched to branch main\n" {
		t.Fatalf("checkout output = %q", out)
	}
	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "main\n" {
		t.Fatalf("a.txt = %q after switching to main", data)
	}

	if _, err := runMygit(t, "checkout", "nope"); err == nil {
		t.Fatal("checkout of unknown target succeeded")
	}
}

func TestCheckoutCommitHashKeepsHead(t *testing.T) {
	dir := initCmdRepo(t)
	writeCmdFile(t, filepath.Join(dir, "a.txt"), "v1\n")
	mustRun(t, "add", "a.txt")
	mustRun(t, "commit", "-m", "v1", "--author", "Test <t@example.com>")

	r, err := repo.Open(dir)
	if err != nil {
		t.Fatalf("repo.Open: %v", err)
	}
	first, _, err := r.HeadCommit()
	r.Close()
	if err != nil {
		t.Fatalf("HeadCommit: %v", err)
	}

	writeCmdFile(t, filepath.Join(dir, "a.txt"), "v2\n")
	mustRun(t, "add", "a.txt")
	mustRun(t, "commit", "-m", "v2", "--author", "Test <t@example.com>")

	mustRun(t, "checkout", string(first))
	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "v1\n" {
		t.Fatalf("a.txt = %q, want v1", data)
	}
	if log := mustRun(t, "log", "--oneline"); !strings.Contains(log, "(HEAD -> main) v2") {
		t.Fatalf("HEAD moved by hash checkout:\n%s", log)
	}
}

func TestDiffCmd(t *testing.T) {
	dir := initCmdRepo(t)
	writeCmdFile(t, filepath.Join(dir, "a.txt"), "a\nb\n")
	mustRun(t, "add", "a.txt")
	writeCmdFile(t, filepath.Join(dir, "a.txt"), "a\nc\n")

	out := mustRun(t, "diff")
	for _, want := range []string{"--- a/a.txt", "+++ b/a.txt", "-b\n", "+c\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("diff output missing %q:\n%s", want, out)
		}
	}
	if single := mustRun(t, "diff", "a.txt"); single != out {
		t.Errorf("diff a.txt = %q, want %q", single, out)
	}
}

func TestConfigCmd(t *testing.T) {
	initCmdRepo(t)
	mustRun(t, "config", "set", "user.name", "Ada")
	if out := mustRun(t, "config", "get", "user.name"); out != "Ada\n" {
		t.Fatalf("config get = %q", out)
	}
	if _, err := runMygit(t, "config", "set", "core.compression", "lz4"); err == nil {
		t.Fatal("config set accepted unknown codec")
	}
	if _, err := runMygit(t, "config", "get", "nope.key"); err == nil {
		t.Fatal("config get accepted unknown key")
	}
	if _, err := runMygit(t, "config", "set", "core.backend", "badger"); err == nil {
		t.Fatal("config set changed the backend of an existing repository")
	}
	if out := mustRun(t, "config", "get", "core.backend"); out != "loose\n" {
		t.Fatalf("core.backend = %q after rejected change", out)
	}
}

func TestPlumbingCmds(t *testing.T) {
	dir := initCmdRepo(t, "--compression", "zstd")
	writeCmdFile(t, filepath.Join(dir, "a.txt"), "hello")

	want := string(object.HashObject(object.TypeBlob, []byte("hello")))
	if out := mustRun(t, "hash-object", "a.txt"); strings.TrimSpace(out) != want {
		t.Fatalf("hash-object = %q, want %s", out, want)
	}
	if _, err := runMygit(t, "cat-file", "-p", want); err == nil {
		t.Fatal("cat-file found an object hash-object never wrote")
	}
	mustRun(t, "hash-object", "-w", "a.txt")
	if out := mustRun(t, "cat-file", "-t", want); out != "blob\n" {
		t.Fatalf("cat-file -t = %q", out)
	}
	if out := mustRun(t, "cat-file", "-s", want); out != "5\n" {
		t.Fatalf("cat-file -s = %q", out)
	}
	if out := mustRun(t, "cat-file", "-p", want); out != "hello" {
		t.Fatalf("cat-file -p = %q", out)
	}

	mustRun(t, "add", "a.txt")
	tree := strings.TrimSpace(mustRun(t, "write-tree"))
	wantEntry := "100644 blob " + want + "\ta.txt\n"
	if out := mustRun(t, "ls-tree", tree); out != wantEntry {
		t.Fatalf("ls-tree = %q, want %q", out, wantEntry)
	}
	if out := mustRun(t, "cat-file", "-p", tree); out != wantEntry {
		t.Fatalf("cat-file -p tree = %q, want %q", out, wantEntry)
	}
}

func TestVerifyCmd(t *testing.T) {
	dir := initCmdRepo(t, "--backend", "badger")
	writeCmdFile(t, filepath.Join(dir, "a.txt"), "x\n")
	mustRun(t, "add", "a.txt")
	mustRun(t, "commit", "-m", "one", "--author", "Test <t@example.com>")

	out := mustRun(t, "verify")
	for _, want := range []string{"refs: 1\n", "commit: 1\n", "tree: 1\n", "blob: 1\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("verify output missing %q:\n%s", want, out)
		}
	}
}

func TestParseAuthor(t *testing.T) {
	tests := []struct {
		input   string
		name    string
		email   string
		wantErr bool
	}{
		{input: "Ada Lovelace <ada@example.com>", name: "Ada Lovelace", email: "ada@example.com"},
		{input: "  solo  ", name: "solo"},
		{input: "", wantErr: true},
		{input: "<ada@example.com>", wantErr: true},
		{input: "Ada <ada@example.com", wantErr: true},
		{input: "Ada <ada@example.com> extra", wantErr: true},
	}
	for _, tc := range tests {
		sig, err := parseAuthor(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseAuthor(%q) = %+v, want error", tc.input, sig)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseAuthor(%q): %v", tc.input, err)
			continue
		}
		if sig.Name != tc.name || sig.Email != tc.email {
			t.Errorf("parseAuthor(%q) = %+v", tc.input, sig)
		}
	}
}

func TestSignatureTime(t *testing.T) {
	got := signatureTime(object.Signature{When: 1700000000, Timezone: "+0100"})
	if got.Format("15:04 -0700") != "23:13 +0100" {
		t.Fatalf("signatureTime = %s", got.Format("2006-01-02 15:04 -0700"))
	}
}
