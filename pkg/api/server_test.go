package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/generate"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/ledger"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/logging"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/pipeline"
	"github.com/SyedFrazAli/linkedin-automation-engine/pkg/publish"
)

type stubDelivery struct {
	postID     string
	err        error
	configured bool
}

func (s *stubDelivery) Post(ctx context.Context, text string) (string, error) {
	return s.postID, s.err
}

func (s *stubDelivery) Configured() bool { return s.configured }

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Name() string                     { return s.name }
func (s stubChecker) Health(ctx context.Context) error { return s.err }

func newTestServer(t *testing.T, delivery *stubDelivery, checkers []pipeline.Checker) (*httptest.Server, *publish.Queue, *ledger.Ledger) {
	t.Helper()
	queue := publish.NewQueue()
	led := ledger.Load(filepath.Join(t.TempDir(), "state.json"), logging.NewNopLogger())
	publisher := publish.NewPublisher(delivery, queue, true, 3000, time.Second, logging.NewNopLogger())
	s := NewServer(queue, publisher, checkers, led, logging.NewNopLogger())
	return httptest.NewServer(s.Handler()), queue, led
}

func enqueued(q *publish.Queue, text string) publish.Item {
	return q.Enqueue(generate.Content{Text: text, Provider: generate.ProvenanceFallback, Model: "template"})
}

func TestListQueue(t *testing.T) {
	srv, queue, _ := newTestServer(t, &stubDelivery{configured: true}, nil)
	defer srv.Close()

	enqueued(queue, "first draft")
	enqueued(queue, "second draft")

	resp, err := http.Get(srv.URL + "/api/v1/queue?status=pending")
	if err != nil {
		t.Fatalf("GET queue: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var body struct {
		Items []publish.Item `json:"items"`
		Count int            `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 2 || len(body.Items) != 2 {
		t.Errorf("count = %d items = %d, want 2", body.Count, len(body.Items))
	}
}

func TestListQueueRejectsUnknownFilter(t *testing.T) {
	srv, _, _ := newTestServer(t, &stubDelivery{configured: true}, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/queue?status=bogus")
	if err != nil {
		t.Fatalf("GET queue: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestApprovePublishesPendingItem(t *testing.T) {
	srv, queue, _ := newTestServer(t, &stubDelivery{configured: true, postID: "urn:li:share:7"}, nil)
	defer srv.Close()

	item := enqueued(queue, "approved post")

	resp, err := http.Post(srv.URL+"/api/v1/queue/"+item.ID+"/publish", "application/json", nil)
	if err != nil {
		t.Fatalf("POST publish: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var got publish.Item
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != publish.StatusPublished || got.PostID != "urn:li:share:7" {
		t.Errorf("item = %+v", got)
	}
	if queue.Depth() != 0 {
		t.Error("queue should be drained")
	}
}

func TestApproveMissingItemIs404(t *testing.T) {
	srv, _, _ := newTestServer(t, &stubDelivery{configured: true}, nil)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/queue/ghost/publish", "application/json", nil)
	if err != nil {
		t.Fatalf("POST publish: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestApproveTwiceIs404(t *testing.T) {
	srv, queue, _ := newTestServer(t, &stubDelivery{configured: true, postID: "p"}, nil)
	defer srv.Close()

	item := enqueued(queue, "once only")
	url := srv.URL + "/api/v1/queue/" + item.ID + "/publish"

	resp, err := http.Post(url, "application/json", nil)
	if err != nil {
		t.Fatalf("first approval: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first approval status = %d", resp.StatusCode)
	}

	resp, err = http.Post(url, "application/json", nil)
	if err != nil {
		t.Fatalf("second approval: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second approval status = %d, want 404", resp.StatusCode)
	}
}

func TestApproveDeliveryFailureKeepsItemPending(t *testing.T) {
	srv, queue, _ := newTestServer(t, &stubDelivery{configured: true, err: errors.New("wire down")}, nil)
	defer srv.Close()

	item := enqueued(queue, "stuck post")

	resp, err := http.Post(srv.URL+"/api/v1/queue/"+item.ID+"/publish", "application/json", nil)
	if err != nil {
		t.Fatalf("POST publish: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		t.Fatal("expected failure status")
	}

	got, err := queue.Get(item.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != publish.StatusPending {
		t.Errorf("status = %s, want pending after failed delivery", got.Status)
	}
}

func TestRejectItem(t *testing.T) {
	srv, queue, _ := newTestServer(t, &stubDelivery{configured: true}, nil)
	defer srv.Close()

	item := enqueued(queue, "not good enough")

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/v1/queue/"+item.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	got, _ := queue.Get(item.ID)
	if got.Status != publish.StatusRejected {
		t.Errorf("status = %s, want rejected", got.Status)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv, _, _ := newTestServer(t, &stubDelivery{configured: true}, []pipeline.Checker{
		stubChecker{name: "github"},
		stubChecker{name: "linkedin", err: errors.New("token expired")},
	})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("degraded should still be 200, got %d", resp.StatusCode)
	}
	var report pipeline.HealthReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Status != pipeline.StatusDegraded {
		t.Errorf("status = %s, want degraded", report.Status)
	}
}

func TestHealthIncludesRecentExecutions(t *testing.T) {
	srv, _, led := newTestServer(t, &stubDelivery{configured: true}, []pipeline.Checker{stubChecker{name: "github"}})
	defer srv.Close()

	led.RecordExecution("signal_pipeline", "success", "detected=2 processed=2")

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		RecentExecutions []ledger.Execution `json:"recent_executions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.RecentExecutions) != 1 || body.RecentExecutions[0].Status != "success" {
		t.Errorf("recent_executions = %+v", body.RecentExecutions)
	}
}

func TestHealthUnhealthyIs503(t *testing.T) {
	srv, _, _ := newTestServer(t, &stubDelivery{configured: true}, []pipeline.Checker{
		stubChecker{name: "github", err: errors.New("down")},
	})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/v1/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", resp.StatusCode)
	}
}

func TestMetricsExposed(t *testing.T) {
	srv, _, _ := newTestServer(t, &stubDelivery{configured: true}, nil)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
