package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/akraiem/attendance-tracker/internal/attend"
	"github.com/akraiem/attendance-tracker/internal/config"
	"github.com/akraiem/attendance-tracker/internal/notify"
	"github.com/akraiem/attendance-tracker/internal/recognition"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Run a recognition session and mark attendance",
	Long: `Process camera frames, match detected faces against the registered
students and mark each recognized student present once. Students marked
earlier the same day keep their original record. Runs until the duration
elapses or Ctrl+C.`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().Duration("duration", 0, "Stop after this long (0 = until interrupted)")
	captureCmd.Flags().String("frames-dir", "", "Read frames from a directory instead of the camera")
}

func runCapture(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, enc, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gallery, err := enc.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading encodings: %w", err)
	}
	if len(gallery) == 0 {
		return fmt.Errorf("no students enrolled, run 'student register' first")
	}

	matcher := recognition.NewMatcher(gallery, cfg.Recognition.Tolerance)
	if cfg.Recognition.UseHNSW {
		matcher.EnableHNSW()
		fmt.Printf("HNSW index built for %d encodings\n", len(gallery))
	}

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

	session := &attend.Session{
		Source:     source,
		Detector:   detector,
		Matcher:    matcher,
		Attendance: st.Attendance(),
		Notifier:   notify.New(cfg.Email),
	}

	fmt.Println("Recognition session running, press Ctrl+C to stop")
	result, err := session.Run(ctx, attend.Options{
		Duration: mustGetDuration(cmd, "duration"),
		OnMark: func(m attend.Mark) {
			if m.NewlyMarked {
				fmt.Printf("  %s  %s (%s) marked present\n", m.Time, m.FullName, m.RegNo)
			} else {
				fmt.Printf("  %s  %s (%s) already marked today\n", m.Time, m.FullName, m.RegNo)
			}
		},
	})
	if result != nil {
		fmt.Printf("\nSession %s: %d frames, %d recognized, %d unknown faces\n",
			result.Date, result.FramesProcessed, len(result.Marks), result.UnknownFaces)
	}
	return err
}
