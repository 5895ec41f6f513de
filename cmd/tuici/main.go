// Package main provides the CLI entrypoint for tuici.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/tuici/internal/audio"
	"github.com/verte-zerg/tuici/internal/config"
	"github.com/verte-zerg/tuici/internal/game"
	"github.com/verte-zerg/tuici/internal/importer"
	"github.com/verte-zerg/tuici/internal/logging"
	"github.com/verte-zerg/tuici/internal/model"
	"github.com/verte-zerg/tuici/internal/rotation"
	"github.com/verte-zerg/tuici/internal/stats"
	"github.com/verte-zerg/tuici/internal/statsui"
	"github.com/verte-zerg/tuici/internal/store"
	"github.com/verte-zerg/tuici/internal/tui"
	"github.com/verte-zerg/tuici/internal/wordlist"
)

const (
	defaultTierRequirement = 3
	defaultPolicy          = "random"
	defaultLabel           = "english"
	defaultCurveWindow     = 10
)

var (
	playBand            string
	playStart           int
	playEnd             int
	playTierRequirement int
	playPolicy          string
	playShuffle         bool
	playWritingRequired bool
	playEasyMode        bool
	playLabel           string
	playTraditional     bool
	playShowPinyin      bool
	playAudio           bool
	playAudioCommand    string
	playResume          bool

	statsBand        string
	statsSince       string
	statsLast        int
	statsCurveWindow int
	statsPlain       bool
	statsColor       bool

	importBand           string
	importSheet          string
	importStartRow       int
	importSimplifiedCol  string
	importTraditionalCol string
	importPinyinCol      string
	importEnglishCol     string
	importForce          bool
)

func main() {
	// A missing .env is the normal case.
	_ = godotenv.Load()
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tuici",
		Short:         "TUI Chinese vocabulary drills",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runPlayCmd,
	}

	rootCmd.Flags().StringVar(&playBand, "band", wordlist.DefaultBand, "word band")
	rootCmd.Flags().IntVar(&playStart, "start", 1, "first word of the band to play (1-based)")
	rootCmd.Flags().IntVar(&playEnd, "end", 0, "last word of the band to play (0 = end of band)")
	rootCmd.Flags().IntVarP(&playTierRequirement, "tier-requirement", "r", defaultTierRequirement, "correct answers per tier")
	rootCmd.Flags().StringVar(&playPolicy, "policy", defaultPolicy, "word selection: random or sequential")
	rootCmd.Flags().BoolVar(&playShuffle, "shuffle", false, "shuffle the selected words")
	rootCmd.Flags().BoolVar(&playWritingRequired, "writing-required", false, "require a handwriting quiz before mastery")
	rootCmd.Flags().BoolVar(&playEasyMode, "easy-mode", false, "misses never demote")
	rootCmd.Flags().StringVar(&playLabel, "label", defaultLabel, "option labels: english or pinyin")
	rootCmd.Flags().BoolVar(&playTraditional, "traditional", false, "show traditional characters")
	rootCmd.Flags().BoolVar(&playShowPinyin, "show-pinyin", false, "show pinyin under the active card")
	rootCmd.Flags().BoolVar(&playAudio, "audio", true, "pronounce the active card")
	rootCmd.Flags().StringVar(&playAudioCommand, "audio-command", audio.DefaultCommand, "speech command ({text} is replaced)")
	rootCmd.Flags().BoolVar(&playResume, "resume", false, "resume the saved session")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newBandsCmd())
	rootCmd.AddCommand(newImportCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

func runPlayCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "band", &playBand, fileCfg.Game.Band)
	applyIntConfig(cmd, "start", &playStart, fileCfg.Game.Start)
	applyIntConfig(cmd, "end", &playEnd, fileCfg.Game.End)
	applyIntConfig(cmd, "tier-requirement", &playTierRequirement, fileCfg.Game.TierRequirement)
	applyStringConfig(cmd, "policy", &playPolicy, fileCfg.Game.Policy)
	applyBoolConfig(cmd, "shuffle", &playShuffle, fileCfg.Game.Shuffle)
	applyBoolConfig(cmd, "writing-required", &playWritingRequired, fileCfg.Game.WritingRequired)
	applyBoolConfig(cmd, "easy-mode", &playEasyMode, fileCfg.Game.EasyMode)
	applyStringConfig(cmd, "label", &playLabel, fileCfg.Game.Label)
	applyBoolConfig(cmd, "traditional", &playTraditional, fileCfg.Game.Traditional)
	applyBoolConfig(cmd, "show-pinyin", &playShowPinyin, fileCfg.Game.ShowPinyin)
	applyBoolConfig(cmd, "audio", &playAudio, fileCfg.Audio.Enabled)
	applyStringConfig(cmd, "audio-command", &playAudioCommand, fileCfg.Audio.Command)

	cfg := model.Config{
		Band:            playBand,
		Start:           playStart,
		End:             playEnd,
		TierRequirement: playTierRequirement,
		Policy:          playPolicy,
		Shuffle:         playShuffle,
		WritingRequired: playWritingRequired,
		EasyMode:        playEasyMode,
		Label:           playLabel,
		Traditional:     playTraditional,
		ShowPinyin:      playShowPinyin,
		AudioEnabled:    playAudio,
		AudioCommand:    playAudioCommand,
		SlotKeys:        tui.DefaultSlotKeys,
		ReplayKey:       tui.DefaultReplayKey,
	}
	if fileCfg.Keys.Slots != nil {
		cfg.SlotKeys = *fileCfg.Keys.Slots
	}
	if fileCfg.Keys.Replay != nil {
		cfg.ReplayKey = *fileCfg.Keys.Replay
	}

	if err := validateConfig(cfg); err != nil {
		return err
	}
	policy, err := rotation.ParsePolicy(cfg.Policy)
	if err != nil {
		return err
	}
	keys, err := tui.NewKeyMap(cfg.SlotKeys, cfg.ReplayKey)
	if err != nil {
		return fmt.Errorf("invalid [keys] config: %w", err)
	}

	logCloser, err := setupLogging(fileCfg.Log)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := logCloser.Close(); cerr != nil {
			logErrf("failed to close log: %v\n", cerr)
		}
	}()

	words, err := wordlist.LoadBand(config.DefaultBandDir(), cfg.Band)
	if err != nil {
		return bandLoadError(cfg.Band, err)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	writer := store.NewWriter(st)
	defer writer.Close()

	var announcer game.Announcer
	if cfg.AudioEnabled {
		speaker, err := audio.NewCommandSpeaker(cfg.AudioCommand)
		if err != nil {
			logErrf("audio disabled: %v\n", err)
		} else {
			a := audio.NewAnnouncer(speaker)
			defer a.Stop()
			announcer = a
		}
	}

	ctx := context.Background()
	snap, err := writer.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("saved session unreadable")
		snap = nil
	}
	if playResume && snap == nil {
		logErrln("no saved session to resume; starting from the menu")
	}

	display := game.Display{Traditional: cfg.Traditional}
	if strings.EqualFold(cfg.Label, "pinyin") {
		display.Label = game.LabelPinyin
	}

	ui := tui.NewModel(tui.Options{
		Config: cfg,
		Keys:   keys,
		NewGame: func(deps game.Deps) (*game.Session, error) {
			return game.New(game.Config{
				Words:           words,
				Band:            cfg.Band,
				Start:           cfg.Start,
				End:             cfg.End,
				TierRequirement: cfg.TierRequirement,
				Policy:          policy,
				Shuffle:         cfg.Shuffle,
				WritingRequired: cfg.WritingRequired,
				EasyMode:        cfg.EasyMode,
				Display:         display,
			}, deps)
		},
		Resume: func(deps game.Deps) (*game.Session, error) {
			saved, err := writer.Load(ctx)
			if err != nil {
				return nil, err
			}
			if saved == nil {
				return nil, nil
			}
			return game.Resume(*saved, display, deps)
		},
		CanResume:     snap != nil,
		ResumeOnStart: playResume && snap != nil,
		Deps: game.Deps{
			Announcer: announcer,
			Persister: writer,
			Recorder:  writer,
		},
	})
	program := tea.NewProgram(ui, tea.WithAltScreen())
	_, runErr := program.Run()
	ui.Close()
	if err := writer.Flush(ctx); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
	if runErr != nil {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	return nil
}

func setupLogging(cfg config.LogConfig) (io.Closer, error) {
	level := ""
	if cfg.Level != nil {
		level = *cfg.Level
	}
	path := config.DefaultLogPath()
	if cfg.File != nil {
		path = *cfg.File
	}
	closer, err := logging.Setup(level, path)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return closer, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newBandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bands",
		Short: "List available word bands",
		Args:  cobra.NoArgs,
		RunE:  runBandsCmd,
	}
}

func runBandsCmd(cmd *cobra.Command, _ []string) error {
	dir := config.DefaultBandDir()
	names, err := wordlist.ListBands(dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		var line string
		words, err := wordlist.LoadBand(dir, name)
		if err != nil {
			line = fmt.Sprintf("%-12s (unreadable: %v)", name, err)
		} else {
			line = fmt.Sprintf("%-12s %d words", name, len(words))
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newImportCmd() *cobra.Command {
	defaults := importer.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a band from an .xlsx or .csv file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importBand, "band", "", "band name to create")
	cmd.Flags().StringVar(&importSheet, "sheet", "", "sheet name (default: first sheet)")
	cmd.Flags().IntVar(&importStartRow, "start-row", defaults.StartRow, "first data row (1-based)")
	cmd.Flags().StringVar(&importSimplifiedCol, "simplified-col", defaults.SimplifiedColumn, "column with simplified characters")
	cmd.Flags().StringVar(&importTraditionalCol, "traditional-col", defaults.TraditionalColumn, "column with traditional characters (empty: none)")
	cmd.Flags().StringVar(&importPinyinCol, "pinyin-col", defaults.PinyinColumn, "column with pinyin")
	cmd.Flags().StringVar(&importEnglishCol, "english-col", defaults.EnglishColumn, "column with english meanings")
	cmd.Flags().BoolVar(&importForce, "force", false, "overwrite an existing band")
	_ = cmd.MarkFlagRequired("band")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	if err := wordlist.ValidateName(importBand); err != nil {
		return err
	}
	dir := config.DefaultBandDir()
	outPath := wordlist.Path(dir, importBand)
	if !importForce {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("band already exists: %s (use --force to overwrite)", outPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat band: %w", err)
		}
	}
	words, result, err := importer.Import(importer.Config{
		Path:              args[0],
		Sheet:             importSheet,
		StartRow:          importStartRow,
		SimplifiedColumn:  importSimplifiedCol,
		TraditionalColumn: importTraditionalCol,
		PinyinColumn:      importPinyinCol,
		EnglishColumn:     importEnglishCol,
	})
	for _, msg := range result.Errors {
		logErrln(msg)
	}
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", args[0], err)
	}
	path, err := importer.WriteBand(dir, importBand, words)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d words to %s (%d skipped)\n", len(words), path, result.Skipped)
	return err
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show stats",
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsBand, "band", "", "band filter")
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().IntVar(&statsCurveWindow, "curve-window", defaultCurveWindow, "moving average window")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print text instead of opening the stats UI")
	cmd.Flags().BoolVar(&statsColor, "color", false, "force colors in plain output")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	var sinceTime *time.Time
	if statsSince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", statsSince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if statsCurveWindow < 1 {
		return fmt.Errorf("--curve-window must be >= 1")
	}

	cfg := model.StatsConfig{
		Band:        statsBand,
		Since:       sinceTime,
		Last:        statsLast,
		CurveWindow: statsCurveWindow,
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	info := wordInfo(statsBand)
	if statsPlain {
		return printStats(cmd.OutOrStdout(), st, cfg, info)
	}
	ui := statsui.NewModel(st, cfg, info)
	program := tea.NewProgram(ui, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func printStats(w io.Writer, st *store.Store, cfg model.StatsConfig, info map[string]model.Word) error {
	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if err := stats.RenderSummary(w, report.Sessions); err != nil {
		return err
	}
	if len(report.Sessions) == 0 {
		return nil
	}
	width := stats.TerminalWidth(w)
	if err := stats.RenderTrends(w, report.Sessions, cfg.CurveWindow, width); err != nil {
		return err
	}
	if err := stats.RenderWordTable(w, report.WordAggsWindow, info, stats.UseColor(w, statsColor)); err != nil {
		return err
	}
	if len(report.WeakWords) > 0 {
		if _, err := fmt.Fprintf(w, "Most missed: %s\n", strings.Join(report.WeakWords, " ")); err != nil {
			return err
		}
	}
	return nil
}

// wordInfo indexes pinyin and meanings for the stats tables. Unreadable
// bands are skipped.
func wordInfo(band string) map[string]model.Word {
	dir := config.DefaultBandDir()
	names := []string{band}
	if band == "" {
		listed, err := wordlist.ListBands(dir)
		if err != nil {
			log.Warn().Err(err).Msg("list bands")
		}
		names = listed
	}
	info := map[string]model.Word{}
	for _, name := range names {
		words, err := wordlist.LoadBand(dir, name)
		if err != nil {
			log.Debug().Err(err).Str("band", name).Msg("skip band for stats")
			continue
		}
		for id, w := range wordlist.Index(words) {
			if _, ok := info[id]; !ok {
				info[id] = w
			}
		}
	}
	return info
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# tuici configuration
# Uncomment a value to enable it. CLI flags override config values.

[game]
# band = %q               # Word band (see: tuici bands)
# start = 1                 # First word of the band (1-based)
# end = 0                   # Last word of the band (0 = end of band)
# tier-requirement = %d      # Correct answers per tier
# policy = %q         # random or sequential
# shuffle = false           # Shuffle the selected words
# writing-required = false  # Handwriting quiz before mastery
# easy-mode = false         # Misses never demote
# label = %q         # Option labels: english or pinyin
# traditional = false       # Show traditional characters
# show-pinyin = false       # Show pinyin under the active card

[audio]
# enabled = true
# command = %q

[keys]
# slots = %q        # Ten keys, top-left to bottom
# replay = " "

[log]
# level = "info"            # Overridden by %s
# file = %q
`,
		wordlist.DefaultBand,
		defaultTierRequirement,
		defaultPolicy,
		defaultLabel,
		audio.DefaultCommand,
		tui.DefaultSlotKeys,
		logging.EnvLevel,
		config.DefaultLogPath(),
	)
}

func validateConfig(cfg model.Config) error {
	if cfg.TierRequirement < 1 {
		return fmt.Errorf("--tier-requirement must be >= 1")
	}
	if cfg.Start < 1 {
		return fmt.Errorf("--start must be >= 1")
	}
	if cfg.End < 0 || (cfg.End > 0 && cfg.End < cfg.Start) {
		return fmt.Errorf("--end must be 0 or >= --start")
	}
	switch strings.ToLower(cfg.Label) {
	case "english", "pinyin":
	default:
		return fmt.Errorf("--label must be english or pinyin")
	}
	if cfg.Band == "" {
		return fmt.Errorf("--band must not be empty")
	}
	return nil
}

func bandLoadError(band string, err error) error {
	lines := []string{
		fmt.Sprintf("failed to load band: %v", err),
		fmt.Sprintf("band %q not found", band),
		"Run: tuici bands",
		fmt.Sprintf("Import: tuici import --band %s FILE.xlsx", band),
	}
	return fmt.Errorf("%s", strings.Join(lines, "\n"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
