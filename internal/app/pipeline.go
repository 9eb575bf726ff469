package app

import (
	"time"

	"github.com/sirupsen/logrus"
)

// runPipeline is the main analysis loop. Every tick it reads a camera frame,
// runs landmark tracking, and feeds the result to the live session.
//
// Pipeline logic:
// 1. Read a frame at the fixed analysis rate (15 FPS)
// 2. Run face + hand landmark tracking
// 3. Feed landmarks to the live session (no session: frame is dropped)
// 4. A failed track counts as "no face": the session still advances so
//    absence is reflected in the scores rather than freezing them
//
// stopCh is captured at Start so a Stop/Start cycle never signals the wrong
// loop instance.
func (a *App) runPipeline(stopCh chan struct{}) {
	frameInterval := time.Second / time.Duration(FrameFPS)

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			session := a.manager.Current()
			if session == nil {
				continue
			}

			frame, err := a.camera.ReadFrame()
			if err != nil {
				logrus.WithError(err).Debug("error reading frame")
				session.ProcessFrame(nil, nil, time.Now())
				continue
			}

			tracker := a.Tracker()
			if tracker == nil {
				frame.Close()
				continue
			}

			face, hands, err := tracker.Track(frame)
			frame.Close()

			if err != nil {
				logrus.WithError(err).Debug("error tracking landmarks")
				session.ProcessFrame(nil, nil, time.Now())
				continue
			}

			session.ProcessFrame(face, hands, time.Now())
		}
	}
}
