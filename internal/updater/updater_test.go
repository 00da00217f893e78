package updater

import "testing"

func TestIsNewer(t *testing.T) {
	cases := []struct {
		remote, current string
		want            bool
	}{
		{"0.2.0", "0.1.0", true},
		{"0.1.1", "0.1.0", true},
		{"1.0.0", "0.9.9", true},
		{"0.1.0", "0.1.0", false},
		{"0.1.0", "0.2.0", false},
		{"v0.2.0", "v0.1.0", true},
		{"0.2.0", "dev", true},
		{"0.2.0", "", true},
		{"0.10.0", "0.9.0", true},
		{"0.2.0-rc1", "0.1.0", true},
	}
	for _, c := range cases {
		if got := isNewer(c.remote, c.current); got != c.want {
			t.Errorf("isNewer(%q, %q) = %v, want %v", c.remote, c.current, got, c.want)
		}
	}
}

func TestParseSemver(t *testing.T) {
	p := parseSemver("1.22.3")
	if p != [3]int{1, 22, 3} {
		t.Fatalf("got %v", p)
	}
	p = parseSemver("2.0.1-beta")
	if p != [3]int{2, 0, 1} {
		t.Fatalf("got %v", p)
	}
}

func TestBuildArchiveURL(t *testing.T) {
	url := buildArchiveURL("0.3.1")
	if url == "" || url[:len(cdnBase)] != cdnBase {
		t.Fatalf("unexpected url: %s", url)
	}
}
