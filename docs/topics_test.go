package docs

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	bashSetup    = "bash setup"
	bashRun      = "bash run"
	consoleCheck = "console check"
	bashCheck    = "bash check"
)

func TestTopics(t *testing.T) {
	// Every topic listed in readme.md must load, and every topic must be listed.
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if matches := topicRegex.FindStringSubmatch(scanner.Text()); len(matches) > 1 {
			listed = append(listed, strings.TrimSpace(matches[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		t.Run("load_"+topic, func(t *testing.T) {
			if _, err := Topic(topic); err != nil {
				t.Errorf("failed to get topic %q: %v", topic, err)
			}
		})
	}

	all, err := Topics()
	if err != nil {
		t.Fatalf("Topics() failed: %v", err)
	}
	for _, topic := range all {
		if !slices.Contains(listed, topic) {
			t.Errorf("topic %q is not listed in readme.md", topic)
		}
	}
	if slices.Contains(all, Index) {
		t.Errorf("Topics() = %v, want no %q", all, Index)
	}
}

func TestTopic_All(t *testing.T) {
	all, err := Topic("*")
	if err != nil {
		t.Fatalf("Topic(*) failed: %v", err)
	}
	for _, heading := range []string{"# Budgeting", "# Debts", "# Reports"} {
		if !strings.Contains(all, heading) {
			t.Errorf("Topic(*) misses %q", heading)
		}
	}
	if _, err := Topic("nope"); err == nil {
		t.Error("Topic(nope) succeeded, want an error")
	}
}

// TestCodeBlocks runs the scenarios of every topic and of the README
// against a freshly built fin.
//
// A "bash setup" block starts a scenario in a new folder, "bash run" blocks
// record their output for the next "console check" block, and "bash check"
// blocks only need to succeed.
func TestCodeBlocks(t *testing.T) {
	files, err := filepath.Glob("*.md")
	if err != nil {
		t.Fatal(err)
	}
	files = append(files, "../README.md")

	var fin string
	for _, file := range files {
		blocks := parseBlocks(t, file)
		if len(blocks) == 0 {
			continue
		}
		if fin == "" {
			fin = buildFin(t, t.TempDir())
		}
		t.Run(filepath.Base(file), func(t *testing.T) {
			r := scenario{
				env: append(os.Environ(),
					fmt.Sprintf("PATH=%s%c%s", filepath.Dir(fin), os.PathListSeparator, os.Getenv("PATH")),
					"FIN_DIR=.fin", "FIN_DATABASE_URL=", "FIN_CURRENCY=USD", "LOG_LEVEL=",
				),
				dir: t.TempDir(),
			}
			for _, b := range blocks {
				r.run(t, b)
			}
		})
	}
}

// block is a fenced code block of a markdown file.
type block struct {
	kind    string
	content string
	pos     string // file:line
}

// buildFin builds the fin executable into tmp and returns its path.
func buildFin(t *testing.T, tmp string) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping the documentation scenarios in short mode")
	}
	output := filepath.Join(tmp, "fin")
	if out, err := exec.Command("go", "build", "-o", output, "../fin/").CombinedOutput(); err != nil {
		t.Fatalf("failed to build fin: %v\n%s", err, out)
	}
	return output
}

// parseBlocks returns the scenario blocks of a markdown file, in order.
func parseBlocks(t *testing.T, file string) []block {
	t.Helper()
	source, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("failed to read %s: %v", file, err)
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var blocks []block
	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !entering || !ok || fcb.Info == nil {
			return ast.WalkContinue, nil
		}
		kind := string(fcb.Info.Segment.Value(source))
		switch kind {
		case bashSetup, bashRun, bashCheck, consoleCheck:
		default:
			return ast.WalkContinue, nil
		}
		var content strings.Builder
		lines := fcb.Lines()
		for i := range lines.Len() {
			line := lines.At(i)
			content.Write(line.Value(source))
		}
		line := bytes.Count(source[:fcb.Info.Segment.Start], []byte("\n")) + 1
		blocks = append(blocks, block{kind: kind, content: content.String(), pos: fmt.Sprintf("%s:%d", file, line)})
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	return blocks
}

// scenario runs the blocks of one markdown file in order.
type scenario struct {
	env    []string
	dir    string
	output string // of the last "bash run"
}

func (r *scenario) run(t *testing.T, b block) {
	t.Helper()
	if b.kind == consoleCheck {
		want := strings.TrimSpace(b.content)
		got := strings.ReplaceAll(strings.TrimSpace(r.output), "\t", "        ")
		if got != want {
			t.Errorf("%s: output mismatch:\ngot:\n\n%s\n\nwant:\n\n%s\n\ngot :%q\nwant:%q", b.pos, got, want, got, want)
		}
		return
	}
	if b.kind == bashSetup {
		r.dir = t.TempDir()
	}

	cmd := exec.Command("bash", "-c", "set -e; "+b.content)
	cmd.Dir = r.dir
	cmd.Env = r.env
	out, err := cmd.CombinedOutput()
	if b.kind == bashRun {
		r.output = string(out)
	}
	switch {
	case err == nil:
	case b.kind == bashCheck:
		t.Errorf("%s: %s failed: %v with output:\n%s", b.pos, b.kind, err, out)
	default:
		t.Fatalf("%s: %s failed: %v with output:\n%s", b.pos, b.kind, err, out)
	}
}
