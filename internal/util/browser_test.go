package util

import (
	"fmt"
	"net"
	"testing"
)

func TestBrowserCommand(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"windows": "rundll32",
		"darwin":  "open",
		"linux":   "xdg-open",
	}
	for goos, want := range cases {
		cmd := browserCommand(goos, "http://localhost:1")
		if len(cmd.Args) == 0 || cmd.Args[0] != want {
			t.Fatalf("%s: args=%v", goos, cmd.Args)
		}
		if last := cmd.Args[len(cmd.Args)-1]; last != "http://localhost:1" {
			t.Fatalf("%s: url not passed: %v", goos, cmd.Args)
		}
	}
}

func TestFindAvailablePort_SkipsBusyPort(t *testing.T) {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	busy := l.Addr().(*net.TCPAddr).Port

	port, err := FindAvailablePort(busy, 20)
	if err != nil {
		t.Fatalf("FindAvailablePort: %v", err)
	}
	if port == busy {
		t.Fatalf("returned busy port %d", busy)
	}
	if got := LocalURL(port); got != fmt.Sprintf("http://localhost:%d", port) {
		t.Fatalf("LocalURL=%q", got)
	}
}
