package gh

import (
	"context"
	"errors"
	"testing"
)

func TestDownloadArtifact(t *testing.T) {
	fake := useFake(t, fakeCall{})

	if err := NewClient("o/r").DownloadArtifact(context.Background(), 11, "glove80.uf2", "/tmp/out"); err != nil {
		t.Fatalf("DownloadArtifact error: %v", err)
	}
	want := "run download 11 -n glove80.uf2 -D /tmp/out -R o/r"
	if got := argsString(fake.recorded[0]); got != want {
		t.Fatalf("args = %q, want %q", got, want)
	}
}

func TestDownloadArtifactMissing(t *testing.T) {
	useFake(t, fakeCall{exitCode: 1, stderr: "no artifact matches any of the names or patterns provided"})

	err := NewClient("o/r").DownloadArtifact(context.Background(), 11, "glove80.uf2", t.TempDir())
	if !errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("expected ErrArtifactNotFound, got %v", err)
	}
}

func TestDownloadArtifactOtherFailure(t *testing.T) {
	useFake(t, fakeCall{exitCode: 1, stderr: "HTTP 500: server error"})

	err := NewClient("o/r").DownloadArtifact(context.Background(), 11, "glove80.uf2", t.TempDir())
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrArtifactNotFound) {
		t.Fatalf("server error must not be reported as missing artifact: %v", err)
	}
}

func TestDownloadAllArtifacts(t *testing.T) {
	fake := useFake(t, fakeCall{})

	if err := NewClient("o/r").DownloadAllArtifacts(context.Background(), 11, "out"); err != nil {
		t.Fatalf("DownloadAllArtifacts error: %v", err)
	}
	if got := argsString(fake.recorded[0]); got != "run download 11 -D out -R o/r" {
		t.Fatalf("unexpected args: %q", got)
	}
}

func TestListArtifacts(t *testing.T) {
	fake := useFake(t, fakeCall{output: `[{"name":"glove80.uf2","size_in_bytes":1024,"expired":false},{"name":"old","size_in_bytes":9,"expired":true}]`})

	got, err := NewClient("o/r").ListArtifacts(context.Background(), 11)
	if err != nil {
		t.Fatalf("ListArtifacts error: %v", err)
	}
	if argsString(fake.recorded[0]) != "api repos/o/r/actions/runs/11/artifacts --jq .artifacts" {
		t.Fatalf("unexpected args: %q", argsString(fake.recorded[0]))
	}
	if len(got) != 2 || got[0].Name != "glove80.uf2" || got[0].SizeInBytes != 1024 || !got[1].Expired {
		t.Fatalf("unexpected artifacts: %+v", got)
	}
}

func TestListArtifactsRequiresRepo(t *testing.T) {
	fake := useFake(t)

	if _, err := NewClient("").ListArtifacts(context.Background(), 11); err == nil {
		t.Fatal("expected error without repo")
	}
	if len(fake.recorded) != 0 {
		t.Fatalf("gh must not run without repo, got %d calls", len(fake.recorded))
	}
}

func TestIsArtifactMissing(t *testing.T) {
	tests := []struct {
		stderr string
		want   bool
	}{
		{"no artifact matches any of the names or patterns provided", true},
		{"No valid artifacts found to download", true},
		{"HTTP 404: Not Found", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := isArtifactMissing(tt.stderr); got != tt.want {
			t.Errorf("isArtifactMissing(%q) = %v, want %v", tt.stderr, got, tt.want)
		}
	}
}
