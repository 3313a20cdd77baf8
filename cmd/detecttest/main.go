// Command detecttest runs the classic brick detector on an image and
// prints the results.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff"

	"brick-finder/internal/config"
	"brick-finder/internal/detect"
	"brick-finder/internal/inventory"
	"brick-finder/internal/session"
	"brick-finder/internal/version"
	"brick-finder/pkg/colorutil"
)

func main() {
	imagePath := flag.String("image", "", "Path to input image (TIFF, PNG, or JPEG)")
	setPath := flag.String("set", "", "Path to set inventory CSV (part_number,color,quantity); omit for a demo set")
	sessionPath := flag.String("session", "", "Path to a search session file to resume and update")
	edge := flag.Int("edge", 0, "Canny low threshold override (0 = use configured value)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("detecttest %s (built %s, commit %s)\n",
			version.Version, version.BuildTime, version.GitCommit)
		return
	}

	if *imagePath == "" {
		fmt.Println("Usage: detecttest -image <path> [-set <csv>] [-edge 50]")
		os.Exit(1)
	}

	params, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *edge > 0 {
		params = params.WithEdgeThreshold(*edge)
	}

	img, err := imaging.Open(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open image: %v\n", err)
		os.Exit(1)
	}
	bounds := img.Bounds()
	fmt.Printf("Loaded image: %dx%d pixels\n", bounds.Dx(), bounds.Dy())

	set, sess, err := loadSet(*setPath, *sessionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load set: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Set: %s (%d bricks, %d outstanding)\n",
		set.Name, set.TotalCount(), set.TotalCount()-set.FoundCount())

	fmt.Printf("\nDetection parameters:\n")
	fmt.Printf("  Edge threshold: %d\n", params.EdgeThreshold)
	fmt.Printf("  Size: %d-%d px (area %.0f-%.0f px^2)\n",
		params.MinBrickSize, params.MaxBrickSize, params.MinArea(), params.MaxArea())
	fmt.Printf("  Color threshold: %d\n", params.ColorThreshold)
	fmt.Printf("  IoU threshold: %.2f, max results: %d\n", params.IoUThreshold, params.MaxResults)

	detector := detect.NewClassic(set, colorutil.LegoPalette(), params)

	fmt.Printf("\nDetecting bricks...\n")
	results, err := detect.DetectImage(detector, img)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Detection failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nDetected %d bricks:\n", len(results))
	fmt.Printf("%-12s %-12s %10s %8s %8s %8s %8s\n",
		"Part", "Color", "Confidence", "X", "Y", "W", "H")
	for _, r := range results {
		fmt.Printf("%-12s %-12s %10.2f %8d %8d %8d %8d\n",
			r.PartID, r.Color, r.Confidence, r.Box.X, r.Box.Y, r.Box.Width, r.Box.Height)
		set.MarkFound(r.PartID, 1)
	}

	fmt.Printf("\nProgress: %d of %d bricks found\n", set.FoundCount(), set.TotalCount())

	if sess != nil {
		sess.Update(set)
		if err := sess.Save(*sessionPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save session: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Session saved to %s\n", *sessionPath)
	}
}

// loadSet resolves the inventory: a resumed session wins over a fresh CSV;
// with neither, a small demo set is used.
func loadSet(csvPath, sessionPath string) (*inventory.Set, *session.File, error) {
	if sessionPath != "" {
		if sess, err := session.Load(sessionPath); err == nil {
			set, err := sess.Restore()
			return set, sess, err
		}
		// Missing session: start fresh from the CSV and save at the end.
		set, err := loadCSVOrDemo(csvPath)
		if err != nil {
			return nil, nil, err
		}
		sess := session.New(set)
		if csvPath != "" {
			sess.SetInventoryPath(sessionPath, csvPath)
		}
		return set, sess, nil
	}

	set, err := loadCSVOrDemo(csvPath)
	return set, nil, err
}

func loadCSVOrDemo(csvPath string) (*inventory.Set, error) {
	if csvPath != "" {
		return inventory.LoadSetCSV(csvPath, "CLI set", "cli")
	}

	bricks := []inventory.Brick{
		{PartNumber: "3001", Color: "red", Quantity: 4},
		{PartNumber: "3003", Color: "blue", Quantity: 2},
		{PartNumber: "3005", Color: "yellow", Quantity: 6},
		{PartNumber: "3020", Color: "green", Quantity: 2},
	}
	return inventory.NewSet("Demo set", "demo", bricks)
}
