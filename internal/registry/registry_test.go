package registry

import (
	"sync"
	"sync/atomic"
	"testing"

	"launcher/internal/versionname"
	"launcher/internal/versionref"
)

func v(raw string) versionname.Name { return versionname.MustParseForTest(raw) }

func TestRegistry_SetDownloadURLInsertsNotInstalled(t *testing.T) {
	r := New()
	r.SetDownloadURL(v("1.2.0"), "https://example.com/1.2.0.zip")

	got, ok := r.Find(v("1.2.0"))
	if !ok {
		t.Fatal("expected version to be present")
	}
	if got.InstallationStatus != NotInstalled {
		t.Fatalf("expected NotInstalled, got %s", got.InstallationStatus)
	}
	if got.DownloadURL != "https://example.com/1.2.0.zip" {
		t.Fatalf("unexpected download URL: %s", got.DownloadURL)
	}
}

func TestRegistry_SortedDescendingOrder(t *testing.T) {
	r := New()
	for _, raw := range []string{"1.0.0", "2.5.1", "1.9.9", "2.5.0"} {
		r.SetDownloadURL(v(raw), "url-"+raw)
	}

	all := r.All()
	want := []string{"2.5.1", "2.5.0", "1.9.9", "1.0.0"}
	if len(all) != len(want) {
		t.Fatalf("expected %d versions, got %d", len(want), len(all))
	}
	for i, w := range want {
		if all[i].Name.String() != w {
			t.Fatalf("position %d: expected %s, got %s", i, w, all[i].Name.String())
		}
	}
}

func TestRegistry_SetInstallationStatusClearsInFlightOnTerminal(t *testing.T) {
	r := New()
	name := v("3.0.0")
	r.SetDownloadURL(name, "url")
	r.SetInFlightInstall(name, "handle-1")

	if _, ok := r.GetInFlightInstall(name); !ok {
		t.Fatal("expected in-flight install to be recorded")
	}

	r.SetInstallationStatus(name, Installed)

	if _, ok := r.GetInFlightInstall(name); ok {
		t.Fatal("expected in-flight install to be cleared on terminal status")
	}
}

func TestRegistry_LatestInstalledSkipsUninstalled(t *testing.T) {
	r := New()
	r.SetDownloadURL(v("2.0.0"), "url-2")
	r.SetDownloadURL(v("1.0.0"), "url-1")
	r.SetInstallationStatus(v("1.0.0"), Installed)

	got, ok := r.LatestInstalled()
	if !ok {
		t.Fatal("expected a latest installed version")
	}
	if got.Name.String() != "1.0.0" {
		t.Fatalf("expected 1.0.0, got %s", got.Name.String())
	}
}

func TestRegistry_FindByRefResolvesEachKind(t *testing.T) {
	r := New()
	r.SetDownloadURL(v("2.0.0"), "url-2")
	r.SetInstallationStatus(v("1.0.0"), Installed)

	if got, ok := r.FindByRef(versionref.NewLatest()); !ok || got.Name.String() != "2.0.0" {
		t.Fatalf("Latest: expected 2.0.0, got %+v ok=%v", got, ok)
	}
	if got, ok := r.FindByRef(versionref.NewLatestInstalled()); !ok || got.Name.String() != "1.0.0" {
		t.Fatalf("LatestInstalled: expected 1.0.0, got %+v ok=%v", got, ok)
	}
	if got, ok := r.FindByRef(versionref.NewExact(v("1.0.0"))); !ok || got.Name.String() != "1.0.0" {
		t.Fatalf("Exact: expected 1.0.0, got %+v ok=%v", got, ok)
	}
	if _, ok := r.FindByRef(versionref.NewExact(v("9.9.9"))); ok {
		t.Fatal("Exact: expected no match for unknown version")
	}
}

// TestRegistry_GetOrCreateInFlightInstallConcurrentCallersShareOneFactory
// covers spec.md §8 scenario 3 ("Concurrent install requests"): many
// goroutines racing to install the same version must result in exactly
// one factory invocation (one Install Task created), with every caller
// observing the same resulting handle.
func TestRegistry_GetOrCreateInFlightInstallConcurrentCallersShareOneFactory(t *testing.T) {
	r := New()
	name := v("4.0.0")

	var factoryCalls int32
	const goroutines = 50

	var wg sync.WaitGroup
	handles := make([]any, goroutines)
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()
			h, _ := r.GetOrCreateInFlightInstall(name, func() any {
				atomic.AddInt32(&factoryCalls, 1)
				return "install-handle"
			})
			handles[i] = h
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&factoryCalls); got != 1 {
		t.Fatalf("expected exactly one factory call, got %d", got)
	}
	for i, h := range handles {
		if h != "install-handle" {
			t.Fatalf("goroutine %d got handle %v, want the shared one", i, h)
		}
	}
}

func TestRegistry_AnyInstalled(t *testing.T) {
	r := New()
	if r.AnyInstalled() {
		t.Fatal("expected false on empty registry")
	}
	r.SetInstallationStatus(v("1.0.0"), Installed)
	if !r.AnyInstalled() {
		t.Fatal("expected true once a version is installed")
	}
}
