// Interactive terminal front end for the defragmentation simulator. All of
// the interesting behavior lives in the simulator and audio packages; this
// binary is presentation glue: flag parsing, a tick loop, key commands and an
// ANSI renderer.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/retrodisk/defragsim/audio"
	"github.com/retrodisk/defragsim/simulator"
)

var (
	speedFlag  string
	sizeFlag   string
	fillFlag   float64
	soundFlag  bool
	driveFlag  string
	seedFlag   int64
	demoFlag   bool
	configFlag string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "defrag",
	Short: "MS-DOS defragmenter simulation",
	Long:  "Simulates the look and sound of a legacy disk defragmentation utility in the terminal.",
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&speedFlag, "speed", "normal", "Animation speed: fast, normal or slow")
	rootCmd.Flags().StringVar(&sizeFlag, "size", "78x16", "Grid size in WxH format")
	rootCmd.Flags().Float64Var(&fillFlag, "fill", 65.0, "Initial disk fill percentage (0-100)")
	rootCmd.Flags().BoolVarP(&soundFlag, "sound", "s", false, "Enable HDD sounds")
	rootCmd.Flags().StringVarP(&driveFlag, "drive", "d", "C", "Disk drive (C, D, E or F)")
	rootCmd.Flags().Int64Var(&seedFlag, "seed", 0, "Random seed (0 = time-based)")
	rootCmd.Flags().BoolVar(&demoFlag, "demo", false, "Demo mode: restart automatically when finished")
	rootCmd.Flags().StringVar(&configFlag, "config", "", "Path to YAML configuration file (flags override)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log verbosity level")
}

func run(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)

	cfg := simulator.DefaultConfig()
	if configFlag != "" {
		data, err := os.ReadFile(configFlag)
		if err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
		logrus.Infof("Loaded configuration from %s", configFlag)
	}

	if cmd.Flags().Changed("speed") || configFlag == "" {
		cfg.Speed, err = simulator.ParseSpeed(speedFlag)
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("size") || configFlag == "" {
		cfg.Width, cfg.Height, err = parseSize(sizeFlag)
		if err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("fill") || configFlag == "" {
		cfg.FillPercent = fillFlag
	}
	if cmd.Flags().Changed("sound") || configFlag == "" {
		cfg.SoundEnabled = soundFlag
	}
	if cmd.Flags().Changed("drive") || configFlag == "" {
		cfg.Drive = driveFlag
	}
	if cmd.Flags().Changed("seed") {
		cfg.RandomSeed = seedFlag
	}
	if cmd.Flags().Changed("demo") {
		cfg.DemoMode = demoFlag
	}

	// Authentic pacing for the interactive view: a visible init splash and a
	// head sweep across the disk before the real work starts.
	cfg.InitTicks = 20
	cfg.ScanRate = 5

	var player *audio.Player
	if cfg.SoundEnabled {
		player = audio.NewPlayer(true)
	}

	sess, err := simulator.NewSession(cfg, player)
	if err != nil {
		return err
	}
	defer sess.Close()

	logrus.Infof("Starting defrag of drive %s: %dx%d grid, %.0f%% full",
		cfg.Drive, cfg.Width, cfg.Height, cfg.FillPercent)

	commands := make(chan simulator.Command, 8)
	go readCommands(os.Stdin, commands)

	fmt.Print(ansiClear + ansiHideCursor)
	defer fmt.Print(ansiShowCursor + ansiReset + "\n")

	ticker := time.NewTicker(sess.TickDuration())
	defer ticker.Stop()

	for !sess.Done() {
		select {
		case c := <-commands:
			sess.HandleCommand(c)
		case <-ticker.C:
			sess.Advance()
			draw(os.Stdout, sess.Snapshot())
		}
	}
	return nil
}

// readCommands maps key input to session commands. Works best with the
// terminal in raw or cbreak mode; with a line-buffered terminal, keys take
// effect after Enter.
func readCommands(in *os.File, out chan<- simulator.Command) {
	reader := bufio.NewReader(in)
	for {
		b, err := reader.ReadByte()
		if err != nil {
			return
		}
		var cmd simulator.Command
		switch b {
		case 'q', 'Q', 0x1b:
			cmd = simulator.CommandQuit
		case 's', 'S':
			cmd = simulator.CommandToggleSound
		case 'r', 'R':
			cmd = simulator.CommandRestart
		case 'p', 'P', ' ':
			cmd = simulator.CommandTogglePause
		case 'D':
			cmd = simulator.CommandToggleDemo
		default:
			continue
		}
		out <- cmd
		if cmd == simulator.CommandQuit {
			return
		}
	}
}

func parseSize(s string) (int, int, error) {
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("size must be in WxH format, got %q", s)
	}
	w, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid width %q", parts[0])
	}
	h, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid height %q", parts[1])
	}
	return w, h, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
