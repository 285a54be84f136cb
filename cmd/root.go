package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	osc "github.com/hypebeast/go-osc"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/spf13/cobra"

	"github.com/streamglitch/glitcher/common/errs"
	"github.com/streamglitch/glitcher/internal/discovery"
	"github.com/streamglitch/glitcher/internal/engine"
	"github.com/streamglitch/glitcher/internal/thumbnailserver"
	"github.com/streamglitch/glitcher/internal/videocache"
	"github.com/streamglitch/glitcher/utils"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "glitcher",
	Short: "H.264 byte-stream glitcher, OSC-controlled.",
	Long:  ``,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger(logLevel, logJSON)
	},
	Version:          "v1.0.0",
	TraverseChildren: true,
	SilenceUsage:     true,
	RunE:             runGlitcher,
}

var (
	logLevel string
	logJSON  bool
	duration time.Duration

	inputDir               string
	listenAddr             string
	sendAddr               string
	noRewriteFrameNums     bool
	prefetch               bool
	externalBeatDivider    int
	thumbnailServerBaseURL string
	thumbnailServerListen  string
	initialFPS             float64
)

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() int {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "INFO", "set log level")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "set log to json format (default colorized console)")
	rootCmd.PersistentFlags().DurationVarP(&duration, "duration", "d", 0, "exit after duration (0 = run until signalled)")

	rootCmd.Flags().StringVar(&inputDir, "input-dir", "", "directory containing encoded/ and thumbnails/ subdirectories")
	rootCmd.Flags().StringVar(&listenAddr, "listen-addr", "127.0.0.1:8000", "address to listen for incoming OSC messages")
	rootCmd.Flags().StringVar(&sendAddr, "send-addr", "", "initial controller address for outgoing OSC messages (also settable via /set_client_address)")
	rootCmd.Flags().BoolVar(&noRewriteFrameNums, "no-rewrite-frame-nums", false, "disable slice_header.frame_num rewriting on output")
	rootCmd.Flags().BoolVar(&prefetch, "prefetch", false, "decode every discovered video up front instead of lazily on first use")
	rootCmd.Flags().IntVar(&externalBeatDivider, "external-beat-divider", 1, "count this many predicted beats as one effective beat for the beat-driven effects")
	rootCmd.Flags().StringVar(&thumbnailServerBaseURL, "thumbnail-server-base-url", "", "base URL advertised for thumbnail images")
	rootCmd.Flags().StringVar(&thumbnailServerListen, "thumbnail-server-listen-addr", "", "address to serve thumbnails over HTTP (disabled if empty)")
	rootCmd.Flags().Float64Var(&initialFPS, "fps", 24, "initial emit rate in frames per second")

	rootCmd.AddCommand(validateParamsCmd)

	err := rootCmd.Execute()
	if err != nil {
		return 1
	}
	return 0
}

func runGlitcher(cmd *cobra.Command, args []string) error {
	if inputDir == "" || !utils.FileExists(inputDir) {
		return errs.Wrapf(errs.ErrDirectoryMissing, "--input-dir %q", inputDir)
	}

	entries, err := discovery.Scan(inputDir)
	if err != nil {
		return errs.Wrapf(err, "scanning input directory %q", inputDir)
	}
	log.Info().Int("count", len(entries)).Str("dir", inputDir).Uint64("started_at_ms", utils.TimeNowMillisecond()).Msg("discovered videos")

	eng := engine.New(entries, videoCacheFor(prefetch, entries), initialFPS, !noRewriteFrameNums, os.Stdout)
	if sendAddr != "" {
		eng.Params.ClientAddr = sendAddr
	}
	if externalBeatDivider > 0 {
		eng.Params.BeatDivider.Set(int32(externalBeatDivider))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if duration > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, duration)
		defer timeoutCancel()
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	if eng.Params.ClientAddr != "" {
		host, port, splitErr := splitHostPort(eng.Params.ClientAddr)
		if splitErr == nil {
			eng.SetSender(osc.NewClient(host, port))
		} else {
			log.Warn().Err(splitErr).Str("send-addr", sendAddr).Msg("ignoring malformed --send-addr")
		}
	}

	errCh := make(chan error, 5)
	numGoroutines := 0

	numGoroutines++
	go func() {
		defer utils.PanicRecoverWithInfo("osc-listen")
		errCh <- eng.ListenOSC(ctx, listenAddr)
	}()

	numGoroutines++
	go func() {
		defer utils.PanicRecoverWithInfo("periodic-broadcast")
		eng.RunPeriodicBroadcast(ctx, time.Second, thumbnailServerBaseURL)
		errCh <- nil
	}()

	numGoroutines++
	go func() {
		defer utils.PanicRecoverWithInfo("beat-consumer")
		eng.RunBeatConsumer(ctx)
		errCh <- nil
	}()

	if thumbnailServerListen != "" {
		numGoroutines++
		go func() {
			defer utils.PanicRecoverWithInfo("thumbnail-server")
			errCh <- thumbnailserver.Serve(ctx, thumbnailServerListen, inputDir+"/thumbnails")
		}()
	}

	numGoroutines++
	go func() {
		defer utils.PanicRecoverWithInfo("emit")
		errCh <- eng.Run(ctx)
	}()

	for i := 0; i < numGoroutines; i++ {
		if err := <-errCh; err != nil {
			log.Error().Err(err).Msg("subsystem exited with error")
		}
	}
	return nil
}

// videoCacheFor builds the shared video cache, optionally prefetching
// every discovered video up front per --prefetch.
func videoCacheFor(prefetch bool, entries []discovery.Entry) *videocache.Cache {
	cache := videocache.New()
	if !prefetch {
		return cache
	}
	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = e.Path
	}
	if err := cache.PrefetchAll(paths); err != nil {
		log.Warn().Err(err).Msg("prefetch failed, falling back to lazy loading")
	}
	return cache
}

func splitHostPort(addr string) (string, int, error) {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return "", 0, errs.Wrapf(errs.ErrInvalidOSCAddr, "malformed address %q", addr)
	}
	host := addr[:idx]
	port := 0
	for _, c := range addr[idx+1:] {
		if c < '0' || c > '9' {
			return "", 0, errs.Wrapf(errs.ErrInvalidOSCAddr, "malformed port in %q", addr)
		}
		port = port*10 + int(c-'0')
	}
	return host, port, nil
}

func initLogger(logLevel string, logJSON bool) {
	// Error Logging with Stacktrace
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	// set log timestamp precise to milliseconds
	zerolog.TimeFieldFormat = "2006-01-02T15:04:05.999Z0700"

	// init log writer
	var writer io.Writer
	if !logJSON {
		// log a human-friendly, colorized output
		noColor := false
		if runtime.GOOS == "windows" {
			noColor = true
		}

		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339Nano,
			NoColor:    noColor,
		}
	} else {
		writer = os.Stderr
	}
	log.Logger = zerolog.New(writer).With().Timestamp().Logger()

	// Setting Global Log Level
	level := strings.ToUpper(logLevel)
	switch level {
	case "DEBUG":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "INFO":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "WARN":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "ERROR":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "FATAL":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "PANIC":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	}
}
