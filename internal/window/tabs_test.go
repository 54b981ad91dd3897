package window

import "testing"

func TestTabSet_AddAndLocate(t *testing.T) {
	ts := NewTabSet()

	if ts.Active() != NotFound {
		t.Errorf("Active() on empty set = %d, want NotFound", ts.Active())
	}

	ts.Add("/a.txt")
	ts.Add("/b.txt")
	ts.AddBlank("")

	if ts.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", ts.Len())
	}
	if got := ts.Locate("/b.txt"); got != 1 {
		t.Errorf("Locate(/b.txt) = %d, want 1", got)
	}
	if got := ts.Locate("/missing"); got != NotFound {
		t.Errorf("Locate(/missing) = %d, want NotFound", got)
	}
	if got := ts.Locate(""); got != NotFound {
		t.Errorf("Locate(\"\") = %d, fresh blank tabs must not match", got)
	}
	if ts.Active() != 2 {
		t.Errorf("Active() = %d, want 2", ts.Active())
	}
}

func TestTabSet_AddExistingActivates(t *testing.T) {
	ts := NewTabSet()
	ts.Add("/a.txt")
	ts.Add("/b.txt")

	if got := ts.Add("/a.txt"); got != 0 {
		t.Errorf("Add(existing) = %d, want 0", got)
	}
	if ts.Len() != 2 {
		t.Errorf("Len() = %d, duplicate tab added", ts.Len())
	}
	if ts.Active() != 0 {
		t.Errorf("Active() = %d, want 0", ts.Active())
	}
}

func TestTabSet_BlankLabels(t *testing.T) {
	ts := NewTabSet()
	ts.AddBlank("/data/blank-files/one")
	ts.AddBlank("")

	tabs := ts.Tabs()
	if tabs[0].Label != "Untitled 1" || tabs[1].Label != "Untitled 2" {
		t.Errorf("labels = %q, %q", tabs[0].Label, tabs[1].Label)
	}
	if !tabs[0].Blank || tabs[0].Path != "/data/blank-files/one" {
		t.Errorf("restored blank tab = %+v", tabs[0])
	}
}

func TestTabSet_AddBuffer(t *testing.T) {
	ts := NewTabSet()
	buf := &Buffer{Text: "hello", Modified: true}

	ts.AddBuffer(buf, "/src/main.go", "")
	ts.AddBuffer(&Buffer{}, "", "scratch")

	first, _ := ts.Tab(0)
	if first.Label != "main.go" || first.Buffer != buf || first.Blank {
		t.Errorf("first tab = %+v", first)
	}
	second, _ := ts.Tab(1)
	if second.Label != "scratch" || !second.Blank {
		t.Errorf("second tab = %+v", second)
	}
}

func TestTabSet_Close(t *testing.T) {
	tests := []struct {
		name       string
		active     int
		close      int
		wantActive int
		wantLen    int
	}{
		{"close before active", 2, 0, 1, 2},
		{"close active middle", 1, 1, 0, 2},
		{"close active first", 0, 0, 0, 2},
		{"close after active", 0, 2, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := NewTabSet()
			ts.Add("/a")
			ts.Add("/b")
			ts.Add("/c")
			ts.Activate(tt.active)

			if !ts.Close(tt.close) {
				t.Fatal("Close() returned false")
			}
			if ts.Active() != tt.wantActive {
				t.Errorf("Active() = %d, want %d", ts.Active(), tt.wantActive)
			}
			if ts.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", ts.Len(), tt.wantLen)
			}
		})
	}

	ts := NewTabSet()
	ts.Add("/only")
	ts.Close(0)
	if ts.Active() != NotFound {
		t.Errorf("Active() after closing last tab = %d", ts.Active())
	}
	if ts.Close(0) {
		t.Error("Close() on empty set should return false")
	}
}

func TestTabSet_Cycle(t *testing.T) {
	ts := NewTabSet()
	ts.Add("/a")
	ts.Add("/b")

	ts.Next()
	if ts.Active() != 0 {
		t.Errorf("Next() wrap = %d, want 0", ts.Active())
	}
	ts.Prev()
	if ts.Active() != 1 {
		t.Errorf("Prev() wrap = %d, want 1", ts.Active())
	}
	if ts.Activate(5) {
		t.Error("Activate(out of range) should fail")
	}
}

func TestTabSet_Info(t *testing.T) {
	ts := NewTabSet()
	ts.Add("/a")
	ts.AddBlank("")

	info := ts.Info()
	if len(info) != 2 || info[0].Active || !info[1].Active || !info[1].Blank {
		t.Errorf("Info() = %+v", info)
	}
}

func TestForWindow(t *testing.T) {
	filter := ForWindow("w1")

	if !filter(Closed{WindowID: "w1"}) {
		t.Error("Closed for w1 should pass")
	}
	if filter(ThemeChanged{WindowID: "w2", Theme: "dark"}) {
		t.Error("event for w2 should be filtered")
	}
	if filter("not a window event") {
		t.Error("unrelated values should be filtered")
	}
	if !(Location{Window: 0, Tab: 3}).Found() || NoLocation.Found() {
		t.Error("Location.Found() mismatch")
	}
}
