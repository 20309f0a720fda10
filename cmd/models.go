package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

const defaultLoadTimeout = 2 * time.Minute

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Load the face models and report their status",
	Long: `Load the face detection, landmark and recognition models with the
configured backend and report whether all of them are available.`,
	RunE: runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().Duration("load-timeout", defaultLoadTimeout, "How long to wait for the models")
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)

	stack, err := newFaceStack(cfg)
	if err != nil {
		return err
	}
	defer stack.Close()

	loadErr := stack.loadModels(context.Background(), mustGetDuration(cmd, "load-timeout"))
	status := stack.loader.Status()

	fmt.Printf("\nBackend: %s\n", cfg.Detector.Kind)
	fmt.Printf("Directory: %s\n", status.Dir)
	fmt.Printf("State: %s\n\n", status.State)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BUNDLE\tFILE\tSERVICE MODEL")
	for _, b := range status.Bundles {
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.Name, b.File, b.ServiceID)
	}
	w.Flush()

	return loadErr
}
