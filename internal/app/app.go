// Package app provides the main application logic for the Drishti interview
// behavior analysis engine.
package app

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/drishti/internal/analysis"
	"github.com/ayusman/drishti/internal/capture"
	"github.com/ayusman/drishti/internal/landmark"
	"github.com/ayusman/drishti/internal/objdetect"
	"github.com/ayusman/drishti/internal/report"
)

// Pipeline timing constants.
const (
	// FrameFPS is the analysis frame rate.
	FrameFPS = 15
)

// Config holds configuration options for the application.
type Config struct {
	Store    *report.Store
	Tunables analysis.Tunables
	CameraID int

	// PersistURL is the persistence API base URL. Empty disables the remote
	// reporter; the local store still records aggregates.
	PersistURL string

	// DetectURL is the object detection service base URL. Empty disables
	// the phone monitor.
	DetectURL string
}

// App orchestrates the camera, the landmark tracker, the analysis session
// manager and the object detection monitor.
type App struct {
	config  Config
	camera  capture.Camera
	tracker landmark.Tracker
	manager *analysis.Manager
	monitor *objdetect.Monitor
	flusher *report.Flusher
	enabled bool
	mu      sync.RWMutex
	stopCh  chan struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	var reporter report.Reporter
	if config.PersistURL != "" {
		reporter = report.NewAPIReporter(config.PersistURL)
	}

	a := &App{
		config:  config,
		camera:  capture.NewCamera(config.CameraID),
		flusher: report.NewFlusher(config.Store, reporter, report.DefaultVocabulary()),
		enabled: true,
	}
	a.manager = analysis.NewManager(config.Tunables, a.flusher)

	// Try MediaPipe first, fall back to the mock tracker
	if mp, err := landmark.NewMediaPipeTracker(landmark.DefaultConfig()); err == nil {
		a.tracker = mp
		logrus.Info("using MediaPipe landmark tracking")
	} else {
		logrus.WithError(err).Warn("MediaPipe not available, using mock tracker")
		a.tracker = landmark.NewMockTracker()
	}

	if config.DetectURL != "" {
		client := objdetect.NewHTTPClient(config.DetectURL)
		a.monitor = objdetect.NewMonitor(client, func() ([]byte, error) {
			return capture.Snapshot(a.camera)
		}, a)
	}

	return a
}

// SetEnabled enables or disables frame analysis without tearing the
// pipeline down.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// IsEnabled returns whether frame analysis is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetTracker sets the landmark tracker implementation to use.
func (a *App) SetTracker(t landmark.Tracker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tracker = t
}

// Start begins the analysis pipeline. Starting a running app is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(FrameFPS)

	a.stopCh = make(chan struct{})
	go a.runPipeline(a.stopCh)

	if a.monitor != nil {
		a.monitor.Start()
	}

	logrus.Info("analysis pipeline started")
	return nil
}

// Stop halts the pipeline and releases all resources. Any live session is
// closed first so no analysis state survives teardown.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if a.monitor != nil {
		a.monitor.Stop()
	}

	a.manager.Stop()

	if err := a.camera.Close(); err != nil {
		logrus.WithError(err).Error("error closing camera")
	}

	if a.tracker != nil {
		if err := a.tracker.Close(); err != nil {
			logrus.WithError(err).Error("error closing tracker")
		}
	}

	logrus.Info("analysis pipeline stopped")
}

// StartSession begins a live analysis session, recording it in the local
// store. If a session is already live it is returned unchanged.
func (a *App) StartSession() *analysis.Session {
	existing := a.manager.Current()
	s := a.manager.Start()
	if existing == nil && a.config.Store != nil {
		if err := a.config.Store.Sessions().Create(s.ID, s.StartedAt); err != nil {
			logrus.WithError(err).Error("failed to record session")
		}
	}
	return s
}

// StopSession ends the live session, if any, flushing any in-progress
// question and marking the local record finished.
func (a *App) StopSession() {
	s := a.manager.Current()
	if s == nil {
		return
	}
	a.manager.Stop()
	if a.config.Store != nil {
		if err := a.config.Store.Sessions().Finish(s.ID, time.Now()); err != nil && err != report.ErrNotFound {
			logrus.WithError(err).Error("failed to finish session record")
		}
	}
}

// SetPhoneDetected forwards an object detection verdict to the live
// session. Implements objdetect.PhoneSink.
func (a *App) SetPhoneDetected(detected bool) {
	if s := a.manager.Current(); s != nil {
		s.SetPhoneDetected(detected)
	}
}

// Manager returns the session manager.
func (a *App) Manager() *analysis.Manager {
	return a.manager
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Tracker returns the landmark tracker.
func (a *App) Tracker() landmark.Tracker {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.tracker
}
