package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-login/internal/capture"
	"github.com/kozaktomas/face-login/internal/facematch"
)

var errNoMatch = errors.New("authentication failed")

var verifyCmd = &cobra.Command{
	Use:   "verify <registration-image> [login-image]",
	Short: "Register a face from an image and log in with another",
	Long: `Register the face in the first image, then authenticate either the
second image or a frame from a local webcam (--camera, needs a gocv build).
Exits non-zero when the faces do not match.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().Int("camera", -1, "Webcam device id to capture the login frame from")
	verifyCmd.Flags().Float64("threshold", 0, "Match threshold (default FACE_MATCH_THRESHOLD or 0.6)")
	verifyCmd.Flags().Duration("load-timeout", defaultLoadTimeout, "How long to wait for the models")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	if threshold := mustGetFloat64(cmd, "threshold"); threshold > 0 {
		cfg.Matcher.Threshold = threshold
	}
	cameraID := mustGetInt(cmd, "camera")

	if len(args) == 1 && cameraID < 0 {
		return errors.New("give a login image or a --camera to capture from")
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

	fmt.Printf("Registering face from %s...\n", args[0])
	if err := stack.matcher.CaptureAndRegister(ctx, session, capture.NewFileSource(args[0], constraints)); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	fmt.Println("You have registered successfully!")

	var src capture.Source
	if len(args) == 2 {
		src = capture.NewFileSource(args[1], constraints)
		fmt.Printf("Authenticating %s...\n", args[1])
	} else {
		webcam, err := capture.OpenWebcam(cameraID, constraints)
		if err != nil {
			return err
		}
		defer webcam.Close()
		src = webcam
		fmt.Printf("Authenticating frame from camera %d...\n", cameraID)
	}

	result, err := stack.matcher.CaptureAndAuthenticate(ctx, session, src)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	fmt.Printf("Distance: %.4f (threshold %.2f)\n", result.Distance, result.Threshold)
	if !result.Matched {
		fmt.Println("Authentication failed. No match found.")
		return errNoMatch
	}
	fmt.Println("Login successful!")
	return nil
}
