package capture

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Snapshot reads one frame from the camera and returns it JPEG-encoded.
// Used by the object detection monitor, which submits stills at a fixed
// interval independent of the analysis frame loop.
func Snapshot(camera Camera) ([]byte, error) {
	frame, err := camera.ReadFrame()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	defer frame.Close()

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	return data, nil
}
