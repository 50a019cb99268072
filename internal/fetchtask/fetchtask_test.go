package fetchtask

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"launcher/internal/notify"
	"launcher/internal/registry"
	"launcher/internal/task"
	"launcher/internal/versionname"
)

func withReleasesURL(t *testing.T, url string) {
	t.Helper()
	old := ReleasesURL
	ReleasesURL = url
	t.Cleanup(func() { ReleasesURL = old })
}

func TestFetchTask_PopulatesRegistryFromMatchingAsset(t *testing.T) {
	token := osAssetToken()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal([]map[string]any{
			{
				"name": "1.2.0",
				"assets": []map[string]any{
					{"browser_download_url": fmt.Sprintf("https://dl.example.com/app-%s.zip", token)},
				},
			},
			{
				"name":   "not-a-version",
				"assets": []map[string]any{},
			},
		})
		w.Write(body)
	}))
	defer srv.Close()
	withReleasesURL(t, srv.URL)

	e := task.NewEngine(1)
	defer e.Shutdown(nil)

	reg := registry.New()
	center := notify.NewCenter()

	ft, tracker := NewInitial(e, reg, center)
	if err := ft.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tracker.Status() != Completed {
		t.Fatalf("expected tracker to reach Completed, got %v", tracker.Status())
	}

	v, ok := reg.Find(versionname.MustParseForTest("1.2.0"))
	if !ok {
		t.Fatal("expected 1.2.0 to be registered")
	}
	if v.DownloadURL == "" {
		t.Fatal("expected download URL to be set")
	}
	if _, ok := reg.Find(versionname.Parse("not-a-version")); ok {
		t.Fatal("expected invalid version name not to be registered")
	}
}

func TestFetchTask_RateLimitFormatsWaitMessage(t *testing.T) {
	got := formatWaitMessage(90 * time.Second)
	want := "You need to wait 1m 30s\nYou opened the launcher more than 60 times in 1 hour, which is the maximum number of requests we can make to our online service to check for available versions"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	got = formatWaitMessage(45 * time.Second)
	if got[:len("You need to wait 45s")] != "You need to wait 45s" {
		t.Fatalf("expected seconds-only message, got %q", got)
	}
}
