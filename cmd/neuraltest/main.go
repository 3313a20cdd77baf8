// Command neuraltest loads a detection model, runs inference on an image,
// and prints the results together with the detector lifecycle state.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff"

	"brick-finder/internal/config"
	"brick-finder/internal/detect"
	"brick-finder/internal/neural"
	"brick-finder/internal/version"
)

func main() {
	modelPath := flag.String("model", "", "Path to ONNX model file")
	namesPath := flag.String("names", "", "Path to class names file (one per line)")
	imagePath := flag.String("image", "", "Path to input image")
	conf := flag.Float64("conf", 0, "Confidence threshold override (0 = use configured value)")
	allow := flag.String("allow", "", "Comma-separated allow-list of class name tokens")
	cuda := flag.Bool("cuda", false, "Prefer CUDA placement (falls back to CPU)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("neuraltest %s (built %s, commit %s)\n",
			version.Version, version.BuildTime, version.GitCommit)
		return
	}

	if *modelPath == "" || *imagePath == "" {
		fmt.Println("Usage: neuraltest -model <path.onnx> -image <path> [-names <path>] [-conf 0.6] [-allow red,blue] [-cuda]")
		os.Exit(1)
	}

	params, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	engine := neural.NewEngine(params, *cuda)
	if *conf > 0 {
		engine.SetConfidenceThreshold(*conf)
	}
	if *allow != "" {
		engine.SetAllowList(strings.Split(*allow, ","))
	}
	if *namesPath != "" {
		if err := engine.LoadClassNames(*namesPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load class names: %v\n", err)
			os.Exit(1)
		}
	}

	// Load in the background the way the application does, then wait for
	// the one-shot completion signal.
	fmt.Printf("Loading model %s...\n", *modelPath)
	result := <-neural.LoadAsync(engine, *modelPath)
	state, msg := engine.State()
	if result.Err != nil {
		fmt.Fprintf(os.Stderr, "Load failed (state=%s): %s\n", state, msg)
		os.Exit(1)
	}
	fmt.Printf("Model loaded in %.2fs (state=%s)\n", result.Elapsed.Seconds(), state)

	if err := engine.Lifecycle().Enable(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to enable detection: %v\n", err)
		os.Exit(1)
	}

	img, err := imaging.Open(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	bounds := img.Bounds()
	fmt.Printf("Loaded image: %dx%d pixels\n", bounds.Dx(), bounds.Dy())

	mat, err := detect.ImageToMat(img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to convert image: %v\n", err)
		os.Exit(1)
	}
	defer mat.Close()

	fmt.Printf("\nRunning inference...\n")
	results := engine.Infer(mat)

	fmt.Printf("\nDetected %d objects:\n", len(results))
	fmt.Printf("%-24s %10s %8s %8s %8s %8s\n", "Class", "Confidence", "X", "Y", "W", "H")
	for _, r := range results {
		fmt.Printf("%-24s %10.2f %8d %8d %8d %8d\n",
			r.ClassName, r.Confidence, r.Box.X, r.Box.Y, r.Box.Width, r.Box.Height)
	}

	engine.Lifecycle().Disable()
	engine.Unload()
}
