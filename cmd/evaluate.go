package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-login/internal/capture"
	"github.com/kozaktomas/face-login/internal/facematch"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <registration-image> <probe-dir>",
	Short: "Authenticate every image in a directory against one registration",
	Long: `Register the face in the first image, then try to log in with every
image in the probe directory and print the distance of each one. Useful
for picking a threshold for a camera setup.`,
	Args: cobra.ExactArgs(2),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().Float64("threshold", 0, "Match threshold (default FACE_MATCH_THRESHOLD or 0.6)")
	evaluateCmd.Flags().Int("concurrency", 4, "Number of images processed in parallel")
	evaluateCmd.Flags().Duration("load-timeout", defaultLoadTimeout, "How long to wait for the models")
}

// probeResult is the outcome for one probe image.
type probeResult struct {
	File     string
	Distance float64
	Matched  bool
	Err      error
}

// imageExtensions are the probe files evaluate picks up.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
}

// listProbeImages returns the image files in dir, sorted by name.
func listProbeImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read probe directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	if threshold := mustGetFloat64(cmd, "threshold"); threshold > 0 {
		cfg.Matcher.Threshold = threshold
	}
	concurrency := max(mustGetInt(cmd, "concurrency"), 1)

	files, err := listProbeImages(args[1])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no images found in probe directory")
	}

	ctx := context.Background()
	stack, err := newFaceStack(cfg)
	if err != nil {
		return err
	}
	defer stack.Close()

	if err := stack.loadModels(ctx, mustGetDuration(cmd, "load-timeout")); err != nil {
		return err
	}

	constraints := cameraConstraints(cfg)
	session := facematch.NewSession()
	if err := stack.matcher.CaptureAndRegister(ctx, session, capture.NewFileSource(args[0], constraints)); err != nil {
		return fmt.Errorf("register %s: %w", args[0], err)
	}

	fmt.Printf("Registered %s, evaluating %d images\n\n", args[0], len(files))

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Authenticating"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	results := make([]probeResult, len(files))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, file := range files {
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := stack.matcher.CaptureAndAuthenticate(ctx, session, capture.NewFileSource(file, constraints))
			results[i] = probeResult{
				File:     filepath.Base(file),
				Distance: res.Distance,
				Matched:  res.Matched,
				Err:      err,
			}
			bar.Add(1)
		}(i, file)
	}
	wg.Wait()
	bar.Finish()
	fmt.Println()

	printProbeResults(results, stack.matcher.Threshold())
	return nil
}

// printProbeResults prints matches first, closest first, then failures.
func printProbeResults(results []probeResult, threshold float64) {
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Err == nil) != (results[j].Err == nil) {
			return results[i].Err == nil
		}
		return results[i].Distance < results[j].Distance
	})

	var matched, rejected, failed int
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tDISTANCE\tRESULT")
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(w, "%s\t-\t%s\n", r.File, describeProbeError(r.Err))
		case r.Matched:
			matched++
			fmt.Fprintf(w, "%s\t%.4f\tmatch\n", r.File, r.Distance)
		default:
			rejected++
			fmt.Fprintf(w, "%s\t%.4f\tno match\n", r.File, r.Distance)
		}
	}
	w.Flush()

	fmt.Printf("\nThreshold %.2f: %d matched, %d rejected, %d failed\n", threshold, matched, rejected, failed)
}

func describeProbeError(err error) string {
	switch {
	case errors.Is(err, facematch.ErrNoFaceDetected):
		return "no face"
	case errors.Is(err, capture.ErrDeviceNotReady):
		return "unreadable"
	default:
		return "error: " + err.Error()
	}
}
