// Package fetchtask implements the background job that pulls the
// remote release index and populates the registry's download URLs,
// grounded on Task_FetchListOfVersions.cpp/hpp.
package fetchtask

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"launcher/internal/launchererrors"
	"launcher/internal/logging"
	"launcher/internal/notify"
	"launcher/internal/registry"
	"launcher/internal/task"
	"launcher/internal/versionname"
)

// ReleasesURL is the GitHub releases endpoint polled for new versions.
// Named as a var, not a const, so tests can point it at a fixture
// server.
var ReleasesURL = "https://api.github.com/repos/CoolLibs/Lab/releases"

// Status mirrors Task_FetchListOfVersions's own exposed status signal
// (spec.md §4.3), read by gates that need to wait for the catalogue.
type Status int32

const (
	NotStarted Status = iota
	InProgress
	Completed
	Cancelled
)

// osAssetToken is the filename fragment (before ".zip") the current
// platform's release asset is tagged with, per original_source's
// get_OS()/is_zip_download.
func osAssetToken() string {
	switch runtime.GOOS {
	case "darwin":
		return "MacOS"
	case "windows":
		return "Windows"
	default:
		return "Linux"
	}
}

type release struct {
	Name   string  `json:"name"`
	Assets []asset `json:"assets"`
}

type asset struct {
	BrowserDownloadURL string `json:"browser_download_url"`
}

// Tracker is the stable handle for a fetch operation's status signal,
// shared across every resubmission in a retry chain. spec.md §4.3's
// status_of_fetch_list_of_versions() belongs to the operation, not to
// any single Task instance — a Task that retries after a rate limit is
// still "the same fetch" as far as a waiting gate is concerned.
type Tracker struct {
	status atomic.Int32
}

// NewTracker creates a Tracker in the NotStarted state.
func NewTracker() *Tracker { return &Tracker{} }

// Status reports the fetch operation's current status.
func (s *Tracker) Status() Status { return Status(s.status.Load()) }

// Task fetches the release index once per Execute call. On transient
// failure or rate limiting it submits a fresh copy of itself through
// Engine.SubmitIn; Task itself doesn't loop.
type Task struct {
	task.Base

	log      *logging.Logger
	notifier *notify.Center
	registry *registry.Registry
	engine   *task.Engine
	client   *http.Client
	tracker  *Tracker

	warningNotifyID  string
	hasWarningNotify atomic.Bool
}

// New builds a fetch task sharing ownerID and tracker with the first
// one in its retry chain (so a caller can track/cancel the whole chain
// and read one consistent status), plus the previous warning
// notification id, if any, so retries reuse the same banner.
func New(owner uuid.UUID, engine *task.Engine, reg *registry.Registry, notifier *notify.Center, tracker *Tracker, warningNotifyID string) *Task {
	t := &Task{
		Base:            task.NewBaseWithOwner(owner, true, false),
		log:             logging.Global().Operation("fetch_versions"),
		notifier:        notifier,
		registry:        reg,
		engine:          engine,
		client:          &http.Client{Timeout: 0}, // infinite timeout: background retry, not a blocking call (spec.md §4.3)
		tracker:         tracker,
		warningNotifyID: warningNotifyID,
	}
	if warningNotifyID != "" {
		t.hasWarningNotify.Store(true)
	}
	return t
}

// NewInitial builds the first fetch task for a fresh owner id and
// tracker, returning both the task and the tracker a caller should
// retain to poll this fetch operation's status across its retries.
func NewInitial(engine *task.Engine, reg *registry.Registry, notifier *notify.Center) (*Task, *Tracker) {
	tracker := NewTracker()
	return New(uuid.New(), engine, reg, notifier, tracker, ""), tracker
}

// Name implements task.Task.
func (t *Task) Name() string { return "Checking for new versions" }

// OnSubmit implements task.Task.
func (t *Task) OnSubmit() {
	t.tracker.status.Store(int32(InProgress))
}

// Execute implements task.Task: issues one GET, parses releases, and
// feeds valid ones into the registry.
func (t *Task) Execute() error {
	req, err := http.NewRequest(http.MethodGet, ReleasesURL, nil)
	if err != nil {
		return t.fail(launchererrors.Wrap(err, launchererrors.PermanentEndpoint, "fetch_versions"))
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return t.handleTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return t.handleRateLimit(resp)
	}
	if resp.StatusCode != http.StatusOK {
		return t.handlePermanentError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return t.handleTransportError(err)
	}

	var releases []json.RawMessage
	if err := json.Unmarshal(body, &releases); err != nil {
		return t.fail(launchererrors.Wrap(err, launchererrors.PermanentEndpoint, "fetch_versions"))
	}

	for _, raw := range releases {
		if t.Cancelled() {
			t.tracker.status.Store(int32(Cancelled))
			return task.ErrCancelled
		}
		t.ingestOne(raw)
	}

	t.tracker.status.Store(int32(Completed))
	return nil
}

// ingestOne parses a single release entry, skipping it on any error
// rather than aborting the whole scan (spec.md §4.3: "malformed
// entries are skipped").
func (t *Task) ingestOne(raw json.RawMessage) {
	var rel release
	if err := json.Unmarshal(raw, &rel); err != nil {
		t.log.WithError(err).Warnf("skipping malformed release entry")
		return
	}

	token := osAssetToken() + ".zip"
	for _, a := range rel.Assets {
		if !containsToken(a.BrowserDownloadURL, token) {
			continue
		}
		name := versionname.Parse(rel.Name)
		if !name.IsValid() {
			return
		}
		t.registry.SetDownloadURL(name, a.BrowserDownloadURL)
		return
	}
}

func containsToken(url, token string) bool {
	for i := 0; i+len(token) <= len(url); i++ {
		if url[i:i+len(token)] == token {
			return true
		}
	}
	return false
}

// Cleanup implements task.Task. On success any warning banner is
// dismissed; on failure the warning was already shown by the handlers
// above.
func (t *Task) Cleanup(wasCancelled bool) {
	if wasCancelled {
		return
	}
	if Status(t.tracker.status.Load()) == Completed && t.hasWarningNotify.Load() {
		t.notifier.CloseImmediately(t.warningNotifyID)
	}
}

func (t *Task) fail(err error) error {
	t.log.WithError(err).Errorf("fetch versions failed")
	return err
}

// handleTransportError shows a persistent "no connection" warning and
// resubmits itself after 1 second (spec.md §4.3 transient failure).
func (t *Task) handleTransportError(cause error) error {
	t.warn("No Internet connection")
	t.resubmit(time.Second)
	return launchererrors.Wrap(cause, launchererrors.TransientNetwork, "fetch_versions")
}

// handleRateLimit parses X-RateLimit-Reset, shows a notification
// stating the wait, and resubmits itself after exactly that delay
// (spec.md §4.3, original_source's minutes/seconds formatting).
func (t *Task) handleRateLimit(resp *http.Response) error {
	reset := resp.Header.Get("X-RateLimit-Reset")
	resetUnix, err := strconv.ParseInt(reset, 10, 64)
	if err != nil {
		t.warn("Oops, our online versions provider is unavailable")
		return launchererrors.New(launchererrors.RateLimited, "fetch_versions", "rate limited, no reset time provided")
	}

	wait := time.Until(time.Unix(resetUnix, 0))
	if wait < 0 {
		wait = 0
	}
	t.warn(formatWaitMessage(wait))
	t.resubmit(wait)
	return launchererrors.New(launchererrors.RateLimited, "fetch_versions", "rate limited by GitHub")
}

// formatWaitMessage matches the original's "Xm Ys" / "Xs" formatting:
// minutes and seconds both shown unless minutes is zero.
func formatWaitMessage(wait time.Duration) string {
	minutes := int(wait / time.Minute)
	seconds := int((wait % time.Minute) / time.Second)
	if minutes == 0 {
		return fmt.Sprintf("You need to wait %ds\nYou opened the launcher more than 60 times in 1 hour, which is the maximum number of requests we can make to our online service to check for available versions", seconds)
	}
	return fmt.Sprintf("You need to wait %dm %ds\nYou opened the launcher more than 60 times in 1 hour, which is the maximum number of requests we can make to our online service to check for available versions", minutes, seconds)
}

// handlePermanentError shows a warning but does not retry: the
// endpoint is unlikely to recover soon (spec.md §4.3).
func (t *Task) handlePermanentError(resp *http.Response) error {
	t.warn(fmt.Sprintf("Status code %d", resp.StatusCode))
	return launchererrors.New(launchererrors.PermanentEndpoint, "fetch_versions", "unexpected status from release index")
}

func (t *Task) warn(content string) {
	n := notify.Notification{
		Kind:     notify.Warning,
		Title:    "Failed to check for new versions online",
		Content:  content,
		Closable: false,
	}
	if t.hasWarningNotify.Load() {
		t.notifier.Change(t.warningNotifyID, n)
		return
	}
	t.warningNotifyID = t.notifier.Send(n)
	t.hasWarningNotify.Store(true)
}

func (t *Task) resubmit(delay time.Duration) {
	next := New(t.OwnerID(), t.engine, t.registry, t.notifier, t.tracker, t.warningNotifyID)
	t.engine.SubmitIn(delay, next)
}
