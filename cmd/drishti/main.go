package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/drishti/internal/analysis"
	"github.com/ayusman/drishti/internal/app"
	"github.com/ayusman/drishti/internal/report"
	"github.com/ayusman/drishti/internal/server"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "HTTP listen address")
		configPath = flag.String("config", "", "optional tunables YAML file")
		cameraID   = flag.Int("camera", 0, "camera device ID")
		persistURL = flag.String("persist-url", "", "persistence API base URL (empty: local store only)")
		detectURL  = flag.String("detect-url", "", "object detection service base URL (empty: phone monitoring off)")
		verbose    = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	fmt.Println("Drishti - Interview Behavior Analysis")

	tunables, err := analysis.LoadTunables(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load tunables")
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		logrus.WithError(err).Fatal("failed to get home directory")
	}

	dataDir := filepath.Join(homeDir, ".drishti")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logrus.WithError(err).Fatal("failed to create data directory")
	}

	st, err := report.New(filepath.Join(dataDir, "drishti.db"))
	if err != nil {
		logrus.WithError(err).Fatal("failed to initialize store")
	}
	defer st.Close()

	a := app.New(app.Config{
		Store:      st,
		Tunables:   tunables,
		CameraID:   *cameraID,
		PersistURL: *persistURL,
		DetectURL:  *detectURL,
	})
	if err := a.Start(); err != nil {
		logrus.WithError(err).Fatal("failed to start pipeline")
	}
	defer a.Stop()

	webDir := findWebDir()
	if webDir != "" {
		logrus.WithField("dir", webDir).Info("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		App:       a,
	})

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", *addr).Info("starting server")
		errCh <- srv.ListenAndServe(*addr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logrus.WithError(err).Fatal("server failed")
	case sig := <-sigCh:
		logrus.WithField("signal", sig.String()).Info("shutting down")
	}
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.drishti/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".drishti", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
