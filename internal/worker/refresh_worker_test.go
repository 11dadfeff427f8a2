package worker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"finbot/internal/amqp"
	"finbot/internal/fetch"
	"finbot/internal/storage"
)

type recordingNotifier struct {
	chatID int64
	err    error
	calls  int
	fail   error
}

func (n *recordingNotifier) NotifyRefreshOutcome(ctx context.Context, chatID int64, refreshErr error) error {
	n.chatID = chatID
	n.err = refreshErr
	n.calls++
	return n.fail
}

func TestHandleRefreshRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fresh workbook"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "data.xlsx")
	audit, err := storage.NewSQLiteRepository(filepath.Join(dir, "audit.db"))
	if err != nil {
		t.Fatalf("open audit store: %v", err)
	}
	defer audit.Close()

	notifier := &recordingNotifier{}
	w := NewRefreshWorker(fetch.NewRefresher(fetch.NewHTTPFetcher(srv.URL), path, nil), audit, notifier, nil)
	ctx := context.Background()

	if err := w.HandleRefreshRequest(ctx, amqp.NewRefreshRequestMessage(11)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read backing file: %v", err)
	}
	if string(got) != "fresh workbook" {
		t.Fatalf("backing file = %q", got)
	}

	last, err := audit.LastRefresh(ctx)
	if err != nil {
		t.Fatalf("last refresh: %v", err)
	}
	if last.Status != "ok" || last.Bytes != int64(len("fresh workbook")) {
		t.Fatalf("audit entry = %+v", last)
	}
	if last.ChatID != 11 {
		t.Fatalf("audit chat_id = %d, want 11", last.ChatID)
	}

	if notifier.calls != 1 {
		t.Fatalf("notifier calls = %d, want 1", notifier.calls)
	}
	if notifier.chatID != 11 || notifier.err != nil {
		t.Fatalf("notified chat %d with err %v, want chat 11 and nil", notifier.chatID, notifier.err)
	}
}

func TestHandleRefreshRequest_FailureIsReturnedRecordedAndNotified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	dir := t.TempDir()
	audit, err := storage.NewSQLiteRepository(filepath.Join(dir, "audit.db"))
	if err != nil {
		t.Fatalf("open audit store: %v", err)
	}
	defer audit.Close()

	notifier := &recordingNotifier{}
	w := NewRefreshWorker(fetch.NewRefresher(fetch.NewHTTPFetcher(srv.URL), filepath.Join(dir, "data.xlsx"), nil), audit, notifier, nil)

	if err := w.HandleRefreshRequest(context.Background(), amqp.NewRefreshRequestMessage(11)); err == nil {
		t.Fatalf("expected error so the delivery is nacked")
	}

	// The failed attempt is in the log, but not as a successful refresh.
	if _, err := audit.LastRefresh(context.Background()); err == nil {
		t.Fatalf("failed refresh must not count as the last successful one")
	}

	if notifier.calls != 1 || notifier.err == nil {
		t.Fatalf("chat must be told about the failure, got calls=%d err=%v", notifier.calls, notifier.err)
	}
}

func TestHandleRefreshRequest_NotifyFailureDoesNotNack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	notifier := &recordingNotifier{fail: errors.New("telegram unreachable")}
	w := NewRefreshWorker(fetch.NewRefresher(fetch.NewHTTPFetcher(srv.URL), filepath.Join(dir, "data.xlsx"), nil), nil, notifier, nil)

	if err := w.HandleRefreshRequest(context.Background(), amqp.NewRefreshRequestMessage(3)); err != nil {
		t.Fatalf("a notify failure must not fail the delivery: %v", err)
	}
}
