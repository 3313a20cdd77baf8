package neural

import (
	"fmt"
	"image"
	"log"
	"os"
	"strings"
	"sync"

	"gocv.io/x/gocv"

	"brick-finder/internal/detect"
)

// inputSize is the square input resolution the model was exported with.
const inputSize = 640

// Engine runs brick detection through a pre-trained ONNX model via the
// OpenCV DNN module. The model handle is owned exclusively by the engine;
// callers must quiesce inference before Unload — no internal lock protects
// the per-frame path, by design, since frames arrive one at a time.
type Engine struct {
	net    gocv.Net
	loaded bool

	lifecycle *StateCell

	// mu guards the settings that the surrounding application may adjust
	// while the frame loop runs.
	mu         sync.Mutex
	threshold  float64
	allow      map[string]struct{}
	classNames []string
	last       []detect.Result

	iouThreshold float64
	maxResults   int

	preferCUDA    bool
	onCUDA        bool
	fallbackTried bool
}

// NewEngine creates an engine with thresholds taken from params.
// When preferCUDA is set, loading attempts GPU placement first and falls
// back to the CPU target on failure.
func NewEngine(params detect.Params, preferCUDA bool) *Engine {
	return &Engine{
		lifecycle:    NewStateCell(),
		threshold:    params.ConfidenceThreshold,
		iouThreshold: params.IoUThreshold,
		maxResults:   params.MaxResults,
		preferCUDA:   preferCUDA,
	}
}

// Lifecycle returns the engine's state cell.
func (e *Engine) Lifecycle() *StateCell {
	return e.lifecycle
}

// State returns the current lifecycle state and error message atomically.
func (e *Engine) State() (State, string) {
	return e.lifecycle.Get()
}

// Load reads the model file and prepares it for inference. Device placement
// failure is recoverable: the engine falls back to the CPU target and keeps
// going. A missing or unreadable model is not, and leaves the lifecycle in
// ERROR until the next Load attempt.
func (e *Engine) Load(modelPath string) error {
	e.lifecycle.BeginLoad()

	if _, err := os.Stat(modelPath); err != nil {
		msg := fmt.Sprintf("model file not found: %s", modelPath)
		e.lifecycle.SetError(msg)
		return fmt.Errorf("%s", msg)
	}

	log.Printf("neural: loading model from %s", modelPath)
	net := gocv.ReadNetFromONNX(modelPath)
	if net.Empty() {
		msg := fmt.Sprintf("failed to read model: %s", modelPath)
		e.lifecycle.SetError(msg)
		return fmt.Errorf("%s", msg)
	}

	if e.loaded {
		e.net.Close()
		e.loaded = false
	}
	e.net = net
	e.loaded = true
	e.fallbackTried = false
	e.onCUDA = false

	if e.preferCUDA {
		if err := e.placeOnCUDA(); err != nil {
			// Recoverable: run on the CPU target instead.
			log.Printf("neural: CUDA placement failed (%v), falling back to CPU", err)
			e.placeOnCPU()
		} else {
			e.onCUDA = true
		}
	} else {
		e.placeOnCPU()
	}

	e.lifecycle.SetReady()
	log.Printf("neural: model loaded (target=%s)", e.target())
	return nil
}

// LoadClassNames reads one class name per line from a file.
func (e *Engine) LoadClassNames(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read class names: %w", err)
	}
	var names []string
	for _, line := range strings.Split(string(data), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	e.SetClassNames(names)
	return nil
}

// SetClassNames replaces the class index to name mapping.
func (e *Engine) SetClassNames(names []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.classNames = names
}

// SetConfidenceThreshold updates the acceptance threshold, clamped to [0, 1].
func (e *Engine) SetConfidenceThreshold(t float64) {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	e.mu.Lock()
	e.threshold = t
	e.mu.Unlock()
	log.Printf("neural: confidence threshold set to %.2f", t)
}

// SetAllowList restricts accepted class names to the given tokens
// (case-insensitive, exact or substring match). Nil or empty means all
// classes are accepted.
func (e *Engine) SetAllowList(tokens []string) {
	allow := normalizeAllowList(tokens)
	e.mu.Lock()
	e.allow = allow
	e.mu.Unlock()
	if allow == nil {
		log.Printf("neural: class filter disabled")
	} else {
		log.Printf("neural: class filter enabled for %d tokens", len(allow))
	}
}

// Infer runs the model on a BGR frame and returns thresholded, suppressed
// detections. Callers are expected to consult the lifecycle state before
// calling; Infer itself only requires a loaded model. A failing frame yields
// an empty result, with one automatic CPU retry after a device failure.
func (e *Engine) Infer(frame gocv.Mat) []detect.Result {
	if !e.loaded {
		log.Printf("neural: model not loaded, skipping inference")
		return nil
	}
	if frame.Empty() {
		return nil
	}

	rows, err := e.forward(frame)
	if err != nil && e.onCUDA && !e.fallbackTried {
		// Device-capability failures surface on the first real forward
		// pass. Retry exactly once on the CPU target; a second failure
		// is a frame-level failure, not a lifecycle error.
		log.Printf("neural: inference failed on CUDA (%v), retrying on CPU", err)
		e.fallbackTried = true
		e.placeOnCPU()
		e.onCUDA = false
		rows, err = e.forward(frame)
	}
	if err != nil {
		log.Printf("neural: inference failed: %v", err)
		return []detect.Result{}
	}

	e.mu.Lock()
	threshold := e.threshold
	allow := e.allow
	names := e.classNames
	e.mu.Unlock()

	scaleX := float64(frame.Cols()) / inputSize
	scaleY := float64(frame.Rows()) / inputSize
	results := decodeRows(rows, names, threshold, allow, scaleX, scaleY)
	results = detect.SuppressOverlaps(results, e.iouThreshold, e.maxResults)

	e.mu.Lock()
	e.last = results
	e.mu.Unlock()
	return results
}

// Detect adapts Infer to the shared detector contract.
func (e *Engine) Detect(frame gocv.Mat) []detect.Result {
	return e.Infer(frame)
}

// LastDetections returns a copy of the most recent inference results.
// It reflects only the last Infer call, not a history.
func (e *Engine) LastDetections() []detect.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]detect.Result, len(e.last))
	copy(out, e.last)
	return out
}

// Unload releases the model and returns the lifecycle to OFF. The caller
// must ensure no Infer call is in flight.
func (e *Engine) Unload() {
	if !e.loaded {
		return
	}
	e.net.Close()
	e.loaded = false
	e.lifecycle.SetOff()
	log.Printf("neural: model unloaded")
}

// forward runs one inference pass and extracts the raw output rows.
// OpenCV reports device and op-support failures as native exceptions, which
// surface in Go as panics; they are converted to errors here so the frame
// loop can continue.
func (e *Engine) forward(frame gocv.Mat) (rows [][]float32, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("forward pass: %v", r)
		}
	}()

	blob := gocv.BlobFromImage(frame, 1.0/255.0, image.Pt(inputSize, inputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	e.net.SetInput(blob, "")
	output := e.net.Forward("")
	defer output.Close()

	return extractRows(output)
}

// extractRows copies the network output into per-box rows. YOLO exports come
// in two layouts: (boxes, attributes) and the transposed (attributes, boxes);
// the attribute dimension is always the smaller one.
func extractRows(output gocv.Mat) ([][]float32, error) {
	dims := output.Size()
	if len(dims) < 2 {
		return nil, fmt.Errorf("unexpected output shape %v", dims)
	}
	a, b := dims[len(dims)-2], dims[len(dims)-1]

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read output tensor: %w", err)
	}
	if len(data) < a*b {
		return nil, fmt.Errorf("output tensor too small: %d < %d", len(data), a*b)
	}

	transposed := a < b // (attributes, boxes) layout
	attrs, boxes := a, b
	if !transposed {
		attrs, boxes = b, a
	}

	rows := make([][]float32, boxes)
	for i := 0; i < boxes; i++ {
		row := make([]float32, attrs)
		for j := 0; j < attrs; j++ {
			if transposed {
				row[j] = data[j*boxes+i]
			} else {
				row[j] = data[i*attrs+j]
			}
		}
		rows[i] = row
	}
	return rows, nil
}

func (e *Engine) placeOnCUDA() error {
	if err := e.net.SetPreferableBackend(gocv.NetBackendCUDA); err != nil {
		return err
	}
	return e.net.SetPreferableTarget(gocv.NetTargetCUDA)
}

func (e *Engine) placeOnCPU() {
	// The default backend/CPU target always succeeds.
	_ = e.net.SetPreferableBackend(gocv.NetBackendDefault)
	_ = e.net.SetPreferableTarget(gocv.NetTargetCPU)
}

func (e *Engine) target() string {
	if e.onCUDA {
		return "cuda"
	}
	return "cpu"
}

var _ detect.Detector = (*Engine)(nil)
