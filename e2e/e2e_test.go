// Package e2e contains end-to-end tests that exercise the full interview
// analysis flow: session lifecycle over HTTP, frame analysis, question
// aggregation, and locally persisted results.
package e2e

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/drishti/internal/analysis"
	"github.com/ayusman/drishti/internal/app"
	"github.com/ayusman/drishti/internal/landmark"
	"github.com/ayusman/drishti/internal/report"
	"github.com/ayusman/drishti/internal/server"
)

func TestInterviewWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st, err := report.New(filepath.Join(t.TempDir(), "e2e.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer st.Close()

	a := app.New(app.Config{
		Store:    st,
		Tunables: analysis.DefaultTunables(),
	})
	tracker := landmark.NewMockTracker()
	tracker.SetFace(landmark.FrontalFace())
	a.SetTracker(tracker)

	srv := server.New(server.Config{Store: st, App: a})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	// 1. Service is healthy
	resp, err := client.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want 200", resp.StatusCode)
	}
	resp.Body.Close()

	// 2. Start an interview session
	resp, err = client.Post(ts.URL+"/api/session", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/session error = %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start session status = %d, want 201", resp.StatusCode)
	}
	var started struct {
		ID string `json:"id"`
	}
	json.NewDecoder(resp.Body).Decode(&started)
	resp.Body.Close()
	if started.ID == "" {
		t.Fatal("session ID should not be empty")
	}

	// 3. Begin the first question
	body, _ := json.Marshal(map[string]int{"index": 0})
	resp, err = client.Post(ts.URL+"/api/session/question", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/session/question error = %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("start question status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	// 4. Analyze frames of a composed, frontal candidate. Timestamps are
	// spaced past the sampling interval so every frame is sampled.
	sess := a.Manager().Current()
	if sess == nil {
		t.Fatal("no live session after start")
	}
	base := time.Now()
	for i := 0; i < 4; i++ {
		face, hands, err := tracker.Track(nil)
		if err != nil {
			t.Fatalf("Track() error = %v", err)
		}
		sess.ProcessFrame(face, hands, base.Add(time.Duration(i)*2*time.Second))
	}

	// 5. Finish the question and check the aggregate
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/session/question", nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE /api/session/question error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stop question status = %d, want 200", resp.StatusCode)
	}
	var stopped struct {
		Aggregate *analysis.Aggregate `json:"aggregate"`
	}
	json.NewDecoder(resp.Body).Decode(&stopped)
	resp.Body.Close()
	if stopped.Aggregate == nil {
		t.Fatal("aggregate should not be null after sampled frames")
	}
	if stopped.Aggregate.SampleCount != 4 {
		t.Errorf("SampleCount = %d, want 4", stopped.Aggregate.SampleCount)
	}
	if stopped.Aggregate.EyeContact < 90 {
		t.Errorf("EyeContact = %d, want >= 90 for a frontal candidate", stopped.Aggregate.EyeContact)
	}

	// 6. The aggregate was persisted as a result for the session
	resp, err = client.Get(ts.URL + "/api/results/" + started.ID)
	if err != nil {
		t.Fatalf("GET /api/results error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("results status = %d, want 200", resp.StatusCode)
	}
	var listed struct {
		Results []struct {
			QuestionIndex      int    `json:"questionIndex"`
			DominantExpression string `json:"dominantExpression"`
			SampleCount        int    `json:"sampleCount"`
		} `json:"results"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()
	if len(listed.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(listed.Results))
	}
	if listed.Results[0].DominantExpression != "composed" {
		t.Errorf("dominant expression = %s, want composed", listed.Results[0].DominantExpression)
	}

	// 7. End the session
	req, _ = http.NewRequest(http.MethodDelete, ts.URL+"/api/session", nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("DELETE /api/session error = %v", err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("stop session status = %d, want 204", resp.StatusCode)
	}
	resp.Body.Close()

	resp, _ = client.Get(ts.URL + "/api/session")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("session status after stop = %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	rec, err := st.Sessions().Get(started.ID)
	if err != nil {
		t.Fatalf("session record lookup error = %v", err)
	}
	if rec.EndedAt == nil {
		t.Error("session record should be finished")
	}
}

func TestCheatingEscalation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	a := app.New(app.Config{Tunables: analysis.DefaultTunables()})
	tracker := landmark.NewMockTracker()
	tracker.SetFace(landmark.HeadDownFace())
	a.SetTracker(tracker)

	sess := a.StartSession()
	defer a.StopSession()

	// Sustained head-down frames build up the behavior score
	base := time.Now()
	for i := 0; i < 15; i++ {
		face, hands, _ := tracker.Track(nil)
		sess.ProcessFrame(face, hands, base.Add(time.Duration(i)*200*time.Millisecond))
	}
	state := sess.Cheating()
	if state.BehaviorScore < analysis.DefaultTunables().BehaviorFlagScore {
		t.Errorf("cheating score = %d, want >= flag threshold", state.BehaviorScore)
	}
	if state.Status != analysis.StatusDistracted {
		t.Errorf("status = %v, want distracted for behavior alone", state.Status)
	}

	// A phone verdict escalates to cheating and latches
	a.SetPhoneDetected(true)
	a.SetPhoneDetected(false)
	state = sess.Cheating()
	if !state.PhoneDetected {
		t.Error("phone detection should latch")
	}
	if state.Status != analysis.StatusCheating {
		t.Errorf("status = %v, want cheating after phone detection", state.Status)
	}
}
