package scan

import (
	"fmt"
	"log"

	"gocv.io/x/gocv"
)

// DeviceInfo describes an available camera device.
type DeviceInfo struct {
	ID     int
	Name   string
	Width  int
	Height int
	FPS    int
}

// DisplayName returns a label suitable for a device picker.
func (d DeviceInfo) DisplayName() string {
	return fmt.Sprintf("%s (%dx%d @ %dfps)", d.Name, d.Width, d.Height, d.FPS)
}

// ScanDevices probes camera devices up to maxDevices and returns the ones
// that open. Probing stops early once the first device fails with nothing
// found, since device IDs are normally contiguous from zero.
func ScanDevices(maxDevices int) []DeviceInfo {
	var devices []DeviceInfo
	log.Printf("scan: probing up to %d camera devices", maxDevices)

	for id := 0; id < maxDevices; id++ {
		info, ok := probeDevice(id)
		if ok {
			devices = append(devices, info)
			log.Printf("scan: found device %s", info.DisplayName())
			continue
		}
		if id > 0 && len(devices) == 0 {
			break
		}
	}

	log.Printf("scan: probe complete, %d devices found", len(devices))
	return devices
}

// probeDevice opens a device just long enough to read its properties.
func probeDevice(id int) (DeviceInfo, bool) {
	cap, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return DeviceInfo{}, false
	}
	defer cap.Close()

	if !cap.IsOpened() {
		return DeviceInfo{}, false
	}

	width := int(cap.Get(gocv.VideoCaptureFrameWidth))
	height := int(cap.Get(gocv.VideoCaptureFrameHeight))
	fps := int(cap.Get(gocv.VideoCaptureFPS))

	// Some backends report zeros until a size is requested.
	if width == 0 || height == 0 {
		cap.Set(gocv.VideoCaptureFrameWidth, 640)
		cap.Set(gocv.VideoCaptureFrameHeight, 480)
		width = int(cap.Get(gocv.VideoCaptureFrameWidth))
		height = int(cap.Get(gocv.VideoCaptureFrameHeight))
	}
	if fps == 0 {
		fps = 30
	}

	return DeviceInfo{
		ID:     id,
		Name:   fmt.Sprintf("Camera %d", id),
		Width:  width,
		Height: height,
		FPS:    fps,
	}, true
}

// CameraSource is a FrameSource backed by a live camera device.
type CameraSource struct {
	cap *gocv.VideoCapture
}

// OpenCamera opens a camera device as a frame source.
func OpenCamera(deviceID int) (*CameraSource, error) {
	cap, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", deviceID, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("camera %d did not open", deviceID)
	}
	return &CameraSource{cap: cap}, nil
}

// Read pulls the next frame. The caller owns the returned Mat.
func (c *CameraSource) Read() (gocv.Mat, bool) {
	frame := gocv.NewMat()
	if !c.cap.Read(&frame) || frame.Empty() {
		frame.Close()
		return gocv.Mat{}, false
	}
	return frame, true
}

// Close releases the camera device.
func (c *CameraSource) Close() error {
	return c.cap.Close()
}

var _ FrameSource = (*CameraSource)(nil)
