package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hectorgimenez/questengine/internal/event"
)

type fakeAPI struct {
	mu    sync.Mutex
	texts []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"quest","username":"quest_bot"}}`)
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		_ = r.ParseForm()
		f.mu.Lock()
		f.texts = append(f.texts, r.FormValue("text"))
		f.mu.Unlock()
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"}}}`)
	default:
		fmt.Fprint(w, `{"ok":true,"result":[]}`)
	}
}

type fakeController struct {
	status  event.Status
	stopped int
}

func (c *fakeController) Status() event.Status { return c.status }
func (c *fakeController) Stop()                { c.stopped++ }

func newTestBot(t *testing.T, ctrl Controller) (*Bot, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	b, err := newBot(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), "token", srv.URL+"/bot%s/%s", 42, ctrl)
	if err != nil {
		t.Fatalf("newBot() error = %v", err)
	}
	t.Cleanup(b.Close)
	return b, api
}

func TestHandleSendsMessage(t *testing.T) {
	b, api := newTestBot(t, &fakeController{})

	err := b.Handle(context.Background(), event.QuestFinished(event.Text("0123456789", "Quest failed in Unknown"), "Failed", "Unknown"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if err = b.Handle(context.Background(), event.StageChanged(event.Text("0123456789", "Supervising stage Open"), "Open")); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	if len(api.texts) != 1 || api.texts[0] != "[01234567] Quest failed in Unknown" {
		t.Fatalf("sent = %q", api.texts)
	}
}

func TestCommands(t *testing.T) {
	ctrl := &fakeController{}
	b := &Bot{controller: ctrl}

	if got := b.command("status"); got != "No run yet." {
		t.Errorf("status = %q", got)
	}
	if got := b.command("/stop"); got != "No quest is running." || ctrl.stopped != 0 {
		t.Errorf("stop while idle = %q", got)
	}

	ctrl.status = event.Status{RunID: "abcdef0123", Playing: true, Stage: "AutoClicking"}
	if got := b.command("Status"); got != "Run abcdef01 is running, stage AutoClicking" {
		t.Errorf("status = %q", got)
	}
	if got := b.command("stop"); got != "Quest run stopped." || ctrl.stopped != 1 {
		t.Errorf("stop = %q, stopped %d", got, ctrl.stopped)
	}
	if got := b.command("dance"); !strings.HasPrefix(got, "Commands:") {
		t.Errorf("unknown command = %q", got)
	}
}

func TestFormatStatusResult(t *testing.T) {
	got := formatStatus(event.Status{RunID: "run", Result: "Completed", ElapsedTime: "00:45:12"})
	if got != "Run run is over, Completed in 00:45:12" {
		t.Fatalf("formatStatus() = %q", got)
	}
}
