package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"lightline-cli/internal/model"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// withWorkspace isolates config and workspace and returns the --dir flag pair.
func withWorkspace(t *testing.T) []string {
	t.Helper()
	t.Setenv("LIGHTLINE_CONFIG_DIR", t.TempDir())
	t.Setenv("LIGHTLINE_DIR", "")
	t.Setenv("LIGHTLINE_LEVEL", "")
	t.Setenv("LIGHTLINE_FORMAT", "")
	return []string{"--dir", t.TempDir()}
}

type result struct {
	Data map[string]any
	List []any
	Meta map[string]any
}

// mustRun runs a command that must succeed and decodes its envelope.
func mustRun(t *testing.T, dir []string, args ...string) result {
	t.Helper()
	out, errOut, err := runCLI(t, append(append([]string{}, dir...), args...)...)
	if err != nil {
		t.Fatalf("%s: %v\nstderr:\n%s", strings.Join(args, " "), err, errOut)
	}
	var env struct {
		Data json.RawMessage `json:"data"`
		Meta map[string]any  `json:"meta"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("%s: decode output: %v\nstdout:\n%s", strings.Join(args, " "), err, out)
	}
	res := result{Meta: env.Meta}
	trimmed := bytes.TrimSpace(env.Data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("[")):
		if err := json.Unmarshal(trimmed, &res.List); err != nil {
			t.Fatalf("decode list: %v", err)
		}
	case bytes.HasPrefix(trimmed, []byte("{")):
		if err := json.Unmarshal(trimmed, &res.Data); err != nil {
			t.Fatalf("decode object: %v", err)
		}
	}
	return res
}

func mustFail(t *testing.T, dir []string, args ...string) string {
	t.Helper()
	_, errOut, err := runCLI(t, append(append([]string{}, dir...), args...)...)
	if err == nil {
		t.Fatalf("%s: expected error", strings.Join(args, " "))
	}
	return errOut
}

func num(t *testing.T, m map[string]any, key string) float64 {
	t.Helper()
	v, ok := m[key].(float64)
	if !ok {
		t.Fatalf("expected number at %q; got %#v", key, m[key])
	}
	return v
}

func waypointTimes(t *testing.T, light map[string]any) []float64 {
	t.Helper()
	wps, ok := light["waypoints"].([]any)
	if !ok {
		t.Fatalf("expected waypoints; got %#v", light["waypoints"])
	}
	out := make([]float64, 0, len(wps))
	for _, wp := range wps {
		out = append(out, num(t, wp.(map[string]any), "time"))
	}
	return out
}

func equalTimes(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInit_CreatesAndSelectsLevel(t *testing.T) {
	dir := withWorkspace(t)

	res := mustRun(t, dir, "init", "intro", "--bpm", "120")
	if res.Data["created"] != true {
		t.Fatalf("expected level created; got %#v", res.Data)
	}
	res = mustRun(t, dir, "init", "intro")
	if res.Data["created"] != false {
		t.Fatalf("expected existing level reused; got %#v", res.Data)
	}

	res = mustRun(t, dir, "levels", "list")
	if len(res.List) != 1 {
		t.Fatalf("expected one level; got %#v", res.List)
	}
	entry := res.List[0].(map[string]any)
	if entry["name"] != "intro" || entry["current"] != true {
		t.Fatalf("unexpected list entry: %#v", entry)
	}
}

func TestNoLevelSelected(t *testing.T) {
	dir := withWorkspace(t)
	errOut := mustFail(t, dir, "lights", "list")
	if !strings.Contains(errOut, "no level selected") {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
}

func TestLights_PlaceEditUndo(t *testing.T) {
	dir := withWorkspace(t)
	mustRun(t, dir, "init", "intro", "--bpm", "120")

	res := mustRun(t, dir, "lights", "place", "--at", "1", "--pos", "1,2", "--danger")
	if res.Meta["changed"] != true || res.Meta["level"] != "intro" {
		t.Fatalf("unexpected meta: %#v", res.Meta)
	}
	if num(t, res.Data, "event") != 0 || num(t, res.Data, "time") != 500 || res.Data["danger"] != true {
		t.Fatalf("unexpected light: %#v", res.Data)
	}
	if got := waypointTimes(t, res.Data); !equalTimes(got, []float64{500, 1000, 1500}) {
		t.Fatalf("unexpected keyframe times: %v", got)
	}

	res = mustRun(t, dir, "waypoints", "add", "0", "--at", "1.25", "--pos", "3,2")
	if num(t, res.Data, "frames") != 4 {
		t.Fatalf("expected 4 frames; got %#v", res.Data["frames"])
	}
	if got := waypointTimes(t, res.Data); !equalTimes(got, []float64{500, 1000, 1250, 1500}) {
		t.Fatalf("unexpected keyframe times: %v", got)
	}

	errOut := mustFail(t, dir, "waypoints", "move", "0", "1", "--to-time", "1")
	if !strings.Contains(errOut, "same time") {
		t.Fatalf("expected a collision error; got %q", errOut)
	}

	errOut = mustFail(t, dir, "waypoints", "move", "0", "0", "--by-time=-0.6")
	if !strings.Contains(errOut, "before zero") {
		t.Fatalf("expected a negative time error; got %q", errOut)
	}

	res = mustRun(t, dir, "waypoints", "move", "0", "1", "--by-time", "0.1")
	if res.Meta["changed"] != true || num(t, res.Data, "frames") != 4 {
		t.Fatalf("unexpected move result: %#v %#v", res.Meta, res.Data)
	}

	res = mustRun(t, dir, "history", "undo")
	if res.Meta["changed"] != true {
		t.Fatalf("expected undo to change the level")
	}
	res = mustRun(t, dir, "lights", "show", "0")
	if got := waypointTimes(t, res.Data); !equalTimes(got, []float64{500, 1000, 1250, 1500}) {
		t.Fatalf("expected keyframe restored; got %v", got)
	}

	res = mustRun(t, dir, "history", "status")
	if num(t, res.Data, "redo") != 1 {
		t.Fatalf("expected one redo step; got %#v", res.Data)
	}

	res = mustRun(t, dir, "journal", "--limit", "1")
	if len(res.List) != 1 || res.List[0].(map[string]any)["action"] != "undo" {
		t.Fatalf("unexpected journal: %#v", res.List)
	}

	res = mustRun(t, dir, "levels", "hash")
	if res.Data["unsaved"] != false {
		t.Fatalf("expected commands to save the level; got %#v", res.Data)
	}
}

func TestLights_NotFound(t *testing.T) {
	dir := withWorkspace(t)
	mustRun(t, dir, "init", "intro")

	errOut := mustFail(t, dir, "lights", "show", "7")
	if !strings.Contains(errOut, "light not found: 7") {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
	errOut = mustFail(t, dir, "lights", "place", "--at", "1", "--shape", "triangle")
	if !strings.Contains(errOut, "unknown shape") {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
}

func TestHistory_FlushSealsStep(t *testing.T) {
	dir := withWorkspace(t)
	mustRun(t, dir, "init", "intro")
	mustRun(t, dir, "lights", "place", "--at", "1")

	// Two moves in a row merge into one step across invocations.
	mustRun(t, dir, "lights", "move", "0", "--by", "1,0")
	mustRun(t, dir, "lights", "move", "0", "--by", "1,0")
	before := mustRun(t, dir, "history", "status")

	mustRun(t, dir, "history", "flush")
	mustRun(t, dir, "lights", "move", "0", "--by", "1,0")
	after := mustRun(t, dir, "history", "status")
	if num(t, after.Data, "undo") != num(t, before.Data, "undo")+1 {
		t.Fatalf("expected flush to open a new step: before=%#v after=%#v", before.Data, after.Data)
	}

	mustRun(t, dir, "history", "undo")
	res := mustRun(t, dir, "waypoints", "list", "0")
	first := res.List[0].(map[string]any)
	tr := first["transform"].(map[string]any)["translation"].(map[string]any)
	if num(t, tr, "x") != 2 {
		t.Fatalf("expected only the last move undone; got %#v", tr)
	}
}

func TestEffects_AddAndIntensity(t *testing.T) {
	dir := withWorkspace(t)
	mustRun(t, dir, "init", "intro", "--bpm", "120")
	mustRun(t, dir, "lights", "place", "--at", "1")

	res := mustRun(t, dir, "effects", "add", "shake", "--at", "2", "--duration", "1b", "--intensity", "0.5")
	if num(t, res.Data, "index") != 1 || res.Data["kind"] != "cameraShake" || num(t, res.Data, "duration") != 500 {
		t.Fatalf("unexpected effect: %#v", res.Data)
	}
	eff := res.Data["effect"].(map[string]any)
	if num(t, eff, "intensity") != 0.5 {
		t.Fatalf("unexpected intensity: %#v", eff)
	}

	res = mustRun(t, dir, "effects", "intensity", "1", "--by", "0.25")
	if num(t, res.Data["effect"].(map[string]any), "intensity") != 0.75 {
		t.Fatalf("unexpected intensity: %#v", res.Data)
	}

	mustFail(t, dir, "effects", "intensity", "0", "--to", "1")
	mustFail(t, dir, "effects", "intensity", "1")

	res = mustRun(t, dir, "effects", "add", "rgb", "--at", "0")
	if res.Data["kind"] != "rgbSplit" || num(t, res.Data, "duration") != 500 {
		t.Fatalf("expected a one-beat rgb split; got %#v", res.Data)
	}

	res = mustRun(t, dir, "events", "list", "--at", "2.2")
	if len(res.List) != 1 || res.List[0].(map[string]any)["kind"] != "cameraShake" {
		t.Fatalf("unexpected active events: %#v", res.List)
	}
}

func TestTiming_AddPointAndSnap(t *testing.T) {
	dir := withWorkspace(t)
	mustRun(t, dir, "init", "intro", "--bpm", "120")

	res := mustRun(t, dir, "timing", "add-point", "--at", "2", "--bpm", "60")
	if len(res.List) != 2 {
		t.Fatalf("expected two timing points; got %#v", res.List)
	}

	res = mustRun(t, dir, "timing", "snap", "2.6", "--fraction", "1")
	if num(t, res.Data, "snapped") != 3000 {
		t.Fatalf("unexpected snap: %#v", res.Data)
	}
	mustFail(t, dir, "timing", "snap", "1", "--fraction", "1/3")
}

func TestLevels_ExportImportYAML(t *testing.T) {
	dir := withWorkspace(t)
	mustRun(t, dir, "init", "intro", "--bpm", "120")
	mustRun(t, dir, "lights", "place", "--at", "1", "--pos", "1,2", "--shape", "rect:2x1")
	mustRun(t, dir, "effects", "add", "palette", "--at", "2")

	path := filepath.Join(t.TempDir(), "intro.yaml")
	res := mustRun(t, dir, "levels", "export", "-o", path)
	if num(t, res.Data, "events") != 2 {
		t.Fatalf("unexpected export: %#v", res.Data)
	}

	res = mustRun(t, dir, "levels", "import", path, "--name", "copy")
	if res.Meta["changed"] != true || res.Data["name"] != "copy" {
		t.Fatalf("unexpected import: %#v %#v", res.Meta, res.Data)
	}

	orig := mustRun(t, dir, "levels", "hash", "intro")
	dup := mustRun(t, dir, "levels", "hash", "copy")
	if orig.Data["saved"] != dup.Data["saved"] {
		t.Fatalf("expected the imported level to match: %v vs %v", orig.Data["saved"], dup.Data["saved"])
	}

	mustFail(t, dir, "levels", "import", path, "--name", "copy")
}

func TestDocs_ListAndRaw(t *testing.T) {
	dir := withWorkspace(t)
	res := mustRun(t, dir, "docs")
	topics, ok := res.Data["topics"].([]any)
	if !ok || len(topics) == 0 {
		t.Fatalf("expected topics; got %#v", res.Data)
	}
	name := topics[0].(map[string]any)["name"].(string)

	out, _, err := runCLI(t, append(dir, "docs", name, "--raw")...)
	if err != nil {
		t.Fatalf("docs --raw: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "#") {
		t.Fatalf("expected raw markdown; got %q", out)
	}
	mustFail(t, dir, "docs", "no-such-topic")
}

func TestParseTimeSpec(t *testing.T) {
	cases := []struct {
		in    string
		v     float64
		beats bool
		err   bool
	}{
		{in: "1.5", v: 1.5},
		{in: "2b", v: 2, beats: true},
		{in: "1/4b", v: 0.25, beats: true},
		{in: "-1b", v: -1, beats: true},
		{in: "+0.5", v: 0.5},
		{in: "", err: true},
		{in: "1/0b", err: true},
		{in: "soon", err: true},
	}
	for _, tc := range cases {
		v, beats, err := parseTimeSpec(tc.in)
		if tc.err {
			if err == nil {
				t.Fatalf("%q: expected error", tc.in)
			}
			continue
		}
		if err != nil || v != tc.v || beats != tc.beats {
			t.Fatalf("%q: got %v %v %v", tc.in, v, beats, err)
		}
	}
}

func TestTimeSpec_PositionFollowsTempoChanges(t *testing.T) {
	tm := model.NewTiming(120)
	tm.Insert(model.TimingPoint{Time: 1000, BeatTime: 1})

	var ts timeSpec
	if err := ts.Set("3b"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// Two beats of 500ms up to the tempo change, then one beat of 1s.
	if got := ts.Position(tm); got != 2000 {
		t.Fatalf("expected 2000; got %d", got)
	}
	// Relative beats use the tempo at the given time.
	if got := ts.Resolve(tm, 1500); got != 3000 {
		t.Fatalf("expected 3000; got %d", got)
	}
	if err := ts.Set("0.75"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := ts.Position(tm); got != 750 {
		t.Fatalf("expected 750; got %d", got)
	}
}

func TestParseShape(t *testing.T) {
	cases := map[string]model.Shape{
		"circle":   model.Circle(1),
		"circle:2": model.Circle(2),
		"line:0.5": model.Line(0.5),
		"rect:2x3": model.Rectangle(2, 3),
		"RECT":     model.Rectangle(1, 1),
	}
	for in, want := range cases {
		got, err := parseShape(in)
		if err != nil || got != want {
			t.Fatalf("%q: got %+v %v", in, got, err)
		}
	}
	for _, in := range []string{"triangle", "circle:-1", "rect:ax2"} {
		if _, err := parseShape(in); err == nil {
			t.Fatalf("%q: expected error", in)
		}
	}
}

func TestParseVec2(t *testing.T) {
	got, err := parseVec2(" 1.5, -2 ")
	if err != nil || got != model.V2(1.5, -2) {
		t.Fatalf("got %+v %v", got, err)
	}
	if _, err := parseVec2("1"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestNumberChange(t *testing.T) {
	newCmd := func(args ...string) (*cobra.Command, *float64, *float64) {
		var to, by float64
		cmd := &cobra.Command{Use: "x"}
		cmd.Flags().Float64Var(&to, "to", 0, "")
		cmd.Flags().Float64Var(&by, "by", 0, "")
		if err := cmd.Flags().Parse(args); err != nil {
			t.Fatalf("parse: %v", err)
		}
		return cmd, &to, &by
	}

	cmd, to, by := newCmd("--to", "2")
	c, err := numberChange[model.Coord](cmd, *to, *by)
	if err != nil || c != model.ChangeTo(model.Coord(2)) {
		t.Fatalf("got %+v %v", c, err)
	}
	cmd, to, by = newCmd("--by", "-1")
	c, err = numberChange[model.Coord](cmd, *to, *by)
	if err != nil || c != model.ChangeBy(model.Coord(-1)) {
		t.Fatalf("got %+v %v", c, err)
	}
	cmd, to, by = newCmd()
	if _, err := numberChange[model.Coord](cmd, *to, *by); err == nil {
		t.Fatalf("expected error without flags")
	}
	cmd, to, by = newCmd("--to", "1", "--by", "1")
	if _, err := numberChange[model.Coord](cmd, *to, *by); err == nil {
		t.Fatalf("expected error with both flags")
	}
}
