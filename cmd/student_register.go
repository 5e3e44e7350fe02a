package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/akraiem/attendance-tracker/internal/config"
	"github.com/akraiem/attendance-tracker/internal/enroll"
	"github.com/akraiem/attendance-tracker/internal/recognition"
)

var studentRegisterCmd = &cobra.Command{
	Use:   "register",
	Short: "Enroll a student from camera frames",
	Long: `Capture face images for a student, filter out blurry frames and frames
without a detectable face, and store the face encodings together with a
registry entry. Re-running for a registered student needs --confirm and
adds more images to the existing entry.`,
	RunE: runStudentRegister,
}

func init() {
	studentCmd.AddCommand(studentRegisterCmd)

	studentRegisterCmd.Flags().String("name", "", "Student full name, exactly three parts (required)")
	studentRegisterCmd.Flags().String("reg-no", "", "Registration number (required)")
	studentRegisterCmd.Flags().Int("images", 10, "Accepted images to capture")
	studentRegisterCmd.Flags().String("frames-dir", "", "Read frames from a directory instead of the camera")
	studentRegisterCmd.Flags().Bool("confirm", false, "Allow adding images to an already registered student")
	studentRegisterCmd.MarkFlagRequired("name")
	studentRegisterCmd.MarkFlagRequired("reg-no")
}

func runStudentRegister(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, enc, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	source, err := openCamera(ctx, cfg, mustGetString(cmd, "frames-dir"))
	if err != nil {
		return err
	}
	defer source.Close()

	detector, err := recognition.NewDlibDetector(cfg.Recognition.ModelsDir)
	if err != nil {
		return fmt.Errorf("loading face models: %w", err)
	}
	defer detector.Close()

	target := mustGetInt(cmd, "images")
	bar := progressbar.NewOptions(target,
		progressbar.OptionSetDescription("Capturing faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
	)

	pipeline := &enroll.Pipeline{
		Source:        source,
		Detector:      detector,
		Encodings:     enc,
		Students:      st.Students(),
		DatasetDir:    cfg.Storage.DatasetDir,
		BlurThreshold: cfg.Recognition.BlurThreshold,
	}
	result, err := pipeline.Run(ctx, enroll.Options{
		FullName:     mustGetString(cmd, "name"),
		RegNo:        mustGetString(cmd, "reg-no"),
		TargetImages: target,
		Confirm:      mustGetBool(cmd, "confirm"),
		Progress: func(accepted, attempts int) {
			bar.Set(accepted)
		},
	})
	fmt.Println()
	if errors.Is(err, enroll.ErrAlreadyRegistered) {
		return fmt.Errorf("%w (rerun with --confirm)", err)
	}
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		// Partial session: frames accepted before the failure were saved.
		fmt.Printf("Warning: %v\n", err)
	}

	fmt.Printf("Registered %s (%s)\n", result.FullName, result.RegNo)
	fmt.Printf("  Accepted images:  %d (total %d)\n", result.Stats.Accepted, result.ImageCount)
	fmt.Printf("  Rejected frames:  %d no face, %d blurry, %d no encoding\n",
		result.Stats.RejectedNoFace, result.Stats.RejectedBlur, result.Stats.RejectedNoEncoding)
	return nil
}
