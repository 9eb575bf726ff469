package objdetect

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SnapshotInterval is the fixed rate at which frames are captured and
// submitted, independent of the landmark frame loop.
const SnapshotInterval = time.Second

// SnapshotFunc produces a JPEG-encoded still of the current camera frame.
type SnapshotFunc func() ([]byte, error)

// PhoneSink receives phone-detection verdicts. The analysis session
// implements it.
type PhoneSink interface {
	SetPhoneDetected(detected bool)
}

// Monitor runs the 1 Hz capture-and-submit loop. It is the sole concurrent
// element of the engine and is eventually consistent by design: a submitted
// frame's verdict may lag several frames behind the behavioral score.
// Network failures are logged and leave the last known verdict in place.
type Monitor struct {
	client   Client
	snapshot SnapshotFunc
	sink     PhoneSink

	mu     sync.Mutex
	stopCh chan struct{}
}

// NewMonitor creates a monitor wiring the snapshot source to the detection
// client and result sink.
func NewMonitor(client Client, snapshot SnapshotFunc, sink PhoneSink) *Monitor {
	return &Monitor{
		client:   client,
		snapshot: snapshot,
		sink:     sink,
	}
}

// Start launches the capture loop. Calling Start on a running monitor is a
// no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopCh != nil {
		return
	}
	m.stopCh = make(chan struct{})
	go m.run(m.stopCh)
}

// Stop halts the capture loop. A second Stop is a no-op.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopCh != nil {
		close(m.stopCh)
		m.stopCh = nil
	}
}

func (m *Monitor) run(stopCh chan struct{}) {
	ticker := time.NewTicker(SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			m.submitOnce()
		}
	}
}

func (m *Monitor) submitOnce() {
	data, err := m.snapshot()
	if err != nil {
		logrus.WithError(err).Debug("snapshot capture failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	result, err := m.client.DetectObjects(ctx, data)
	if err != nil {
		// Keep the last known verdict; the behavioral score carries on.
		logrus.WithError(err).Warn("object detection request failed")
		return
	}

	m.sink.SetPhoneDetected(result.PhoneDetected)
}
