package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/faiface/beep"
	"github.com/spf13/cobra"

	"cueplay/internal/audio"
	"cueplay/internal/config"
	"cueplay/internal/playback"
	"cueplay/internal/playlist"
	"cueplay/internal/term"
)

const (
	appName = "cueplay"
	version = "1.0.0"

	// All tracks are resampled onto one speaker rate.
	sinkSampleRate = beep.SampleRate(44100)
)

var (
	simpleMode bool
	randomMode bool
	loopMode   bool
	volumePct  int
)

var rootCmd = &cobra.Command{
	Use:   appName + " INPUT",
	Short: "Sequential terminal audio player",
	Long: `Cueplay plays audio files one after another in the terminal.

INPUT may be a single audio file, a directory (scanned recursively),
a glob pattern, or a .txt/.m3u file with one path per line.`,
	Version:      version,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&simpleMode, "simple", "s", false, "suppress the banner and control help")
	rootCmd.Flags().BoolVarP(&randomMode, "random", "r", false, "shuffle the playlist before playing")
	rootCmd.Flags().BoolVarP(&loopMode, "loop", "l", false, "loop the playlist")
	rootCmd.Flags().IntVarP(&volumePct, "volume", "v", -1, "initial volume 0-100 (default from config)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(input string) error {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	tracks, err := playlist.Resolve(input)
	if err != nil {
		return err
	}
	if randomMode {
		playlist.Shuffle(tracks)
	}

	volume := cfg.DefaultVolume
	if volumePct >= 0 {
		if volumePct > 100 {
			volumePct = 100
		}
		volume = float64(volumePct) / 100
	}

	if !simpleMode && !cfg.SimpleMode {
		printBanner(cfg.KeyBindings)
	}

	sink, err := audio.NewSink(sinkSampleRate, volume)
	if err != nil {
		return fmt.Errorf("open audio output: %w", err)
	}
	defer sink.Close()

	console, err := term.Open()
	if err != nil {
		return err
	}
	// Raw mode has to be undone on every exit path, early returns and
	// fatal errors included.
	defer func() {
		if err := console.Restore(); err != nil {
			fmt.Fprintf(os.Stderr, "restore terminal: %v\n", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)
	go func() {
		<-sigChan
		console.Restore()
		os.Exit(0)
	}()

	console.SetTitle(fmt.Sprintf("%s v%s", appName, version))

	session := playback.NewSession(tracks, sink, console, os.Stdout, os.Stderr, playback.Options{
		Random:     randomMode,
		Loop:       loopMode,
		VolumeStep: cfg.VolumeStep,
		Bindings:   bindings(cfg.KeyBindings),
	})

	err = session.Run()
	console.ClearLine()
	if err != nil {
		return err
	}
	fmt.Println("Bye.")
	return nil
}

// bindings maps the config key names onto session actions.
func bindings(km config.KeyMap) playback.KeyBindings {
	return playback.KeyBindings{
		PauseResume: km.PlayPause,
		Mute:        km.Mute,
		Next:        km.Next,
		Previous:    km.Previous,
		VolumeUp:    km.VolumeUp,
		VolumeDown:  km.VolumeDown,
		Quit:        km.Quit,
	}
}

func printBanner(km config.KeyMap) {
	fmt.Printf("==================[ %s v%s ]==================\n", appName, version)
	fmt.Printf(" [%s] pause/resume   [%s] mute   [%s/Ctrl+C] quit\n", km.PlayPause, km.Mute, km.Quit)
	fmt.Printf(" [%s] previous   [%s] next   [%s] volume up   [%s] volume down\n",
		km.Previous, km.Next, km.VolumeUp, km.VolumeDown)
	fmt.Println("======================================================")
}
