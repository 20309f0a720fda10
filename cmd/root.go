package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-login",
	Short: "Register a face from the webcam and log in with it",
	Long: `Face Login captures a still frame from a camera, extracts a face
embedding and compares it with the single registered face of the session.
Run "face-login serve" for the browser flow or "face-login verify" to try
two images from the command line.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().String("detector", "", "Face detector backend: service or dlib (overrides FACE_DETECTOR)")
	rootCmd.PersistentFlags().String("models", "", "Model directory (overrides MODELS_PATH)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
