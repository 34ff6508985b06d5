package commands

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cropdoc/pkg/cli/ui"
)

var (
	analyzeCrop  string
	analyzeImage string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "diagnose a leaf photo",
	Long: `Upload a leaf photo for diagnosis. The result names the disease with a
confidence and severity, followed by symptoms, treatment and prevention.`,
	Example: `  $ cropctl analyze --crop tomato --image leaf.jpg
  $ cropctl analyze --crop maize --image leaf.png --user U123`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeCrop, "crop", "c", "", "crop type (tomato, grape, maize, ...)")
	analyzeCmd.Flags().StringVarP(&analyzeImage, "image", "i", "", "path to the leaf image")
	_ = analyzeCmd.MarkFlagRequired("crop")
	_ = analyzeCmd.MarkFlagRequired("image")

	analyzeCmd.SilenceUsage = true
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	dataURL, err := readImageDataURL(analyzeImage)
	if err != nil {
		ui.PrintError(cmd.ErrOrStderr(), "%v", err)
		return err
	}

	ctx, cancel := commandContext(2 * time.Minute)
	defer cancel()
	c, err := newClient()
	if err != nil {
		return err
	}

	ui.PrintInfo(cmd.ErrOrStderr(), "Analyzing %s leaf...", analyzeCrop)
	res, err := c.Analyze(ctx, dataURL, analyzeCrop)
	if err != nil {
		ui.PrintError(cmd.ErrOrStderr(), "analysis failed: %v", err)
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), ui.RenderDiagnosis(res))
	return nil
}

// readImageDataURL loads a file and wraps it as a base64 data URL.
func readImageDataURL(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("image %s is empty", path)
	}
	return "data:" + http.DetectContentType(raw) + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}
