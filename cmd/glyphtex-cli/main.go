package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"glyphtex/recognition"
)

type cliOptions struct {
	configPath  string
	imagePath   string
	modelPath   string
	ortDLL      string
	scoresPath  string
	fullPath    string
	indexPath   string
	simplePath  string
	tabularPath string
	prefsPath   string
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		log.Fatalf("glyphtex-cli: %v", err)
	}
	if err := run(opts); err != nil {
		log.Fatalf("glyphtex-cli: %v", err)
	}
}

func parseFlags() (cliOptions, error) {
	var opts cliOptions
	flag.StringVar(&opts.configPath, "config", "", "Path to config.json (default: ./config.json)")
	flag.StringVar(&opts.imagePath, "image", "", "PNG/JPEG/GIF file containing the drawn glyph")
	flag.StringVar(&opts.modelPath, "model", "", "Path to the ONNX symbol classifier model")
	flag.StringVar(&opts.ortDLL, "ort-lib", "", "Path to the onnxruntime shared library")
	flag.StringVar(&opts.scoresPath, "scores", "", "File of comma/newline separated raw scores, used instead of a model")
	flag.StringVar(&opts.fullPath, "mapping-full", "", "Full mapping JSON with per-candidate priorities")
	flag.StringVar(&opts.indexPath, "mapping-index", "", "Index JSON with idx_to_id associations")
	flag.StringVar(&opts.simplePath, "mapping-simple", "", "Simple mapping JSON (idx_to_id + id_to_latex)")
	flag.StringVar(&opts.tabularPath, "mapping-tabular", "", "Tabular CSV mapping (symbol_id,latex)")
	flag.StringVar(&opts.prefsPath, "prefs", "", "Personalization JSON recording last-chosen commands")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s --image FILE [--model FILE | --scores FILE] [options]\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	opts.configPath = strings.TrimSpace(opts.configPath)
	opts.imagePath = strings.TrimSpace(opts.imagePath)
	opts.modelPath = strings.TrimSpace(opts.modelPath)
	opts.scoresPath = strings.TrimSpace(opts.scoresPath)

	if opts.imagePath == "" {
		flag.Usage()
		return opts, errors.New("missing required --image file")
	}
	return opts, nil
}

func run(opts cliOptions) error {
	cfg, err := recognition.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyOverrides(&cfg, opts)

	logger := log.New(os.Stderr, "", log.LstdFlags)
	store := recognition.LoadStore(cfg.Mapping, logger)
	if store.Err() != nil {
		logger.Printf("mapping sources unusable, using built-in table: %v", store.Err())
	}

	var prefs recognition.Personalization
	if cfg.PrefsPath != "" {
		prefsStore, err := recognition.OpenPrefsStore(cfg.PrefsPath)
		if err != nil {
			return fmt.Errorf("open prefs: %w", err)
		}
		prefs = prefsStore
	}

	classifier, err := buildClassifier(opts, cfg)
	if err != nil {
		return err
	}
	if opts.scoresPath != "" {
		cfg.Classifier.ClassCount = classifier.Classes()
	}

	service, err := recognition.NewService(classifier, store, prefs, cfg, logger)
	if err != nil {
		return fmt.Errorf("init service: %w", err)
	}
	defer service.Close()

	img, err := decodeImage(opts.imagePath)
	if err != nil {
		return err
	}

	result, err := service.Recognize(context.Background(), img)
	if err != nil {
		if errors.Is(err, recognition.ErrEmptyInput) {
			return errors.New("the image contains no strokes, draw something first")
		}
		if errors.Is(err, recognition.ErrClassifierUnavailable) {
			fmt.Println("no suggestions available")
			return nil
		}
		return fmt.Errorf("recognize: %w", err)
	}
	printSuggestions(result.Suggestions)
	return nil
}

func applyOverrides(cfg *recognition.Config, opts cliOptions) {
	if opts.modelPath != "" {
		cfg.Classifier.ModelPath = opts.modelPath
	}
	if opts.ortDLL != "" {
		cfg.Classifier.OrtDLL = opts.ortDLL
	}
	if opts.fullPath != "" {
		cfg.Mapping.FullPath = opts.fullPath
	}
	if opts.indexPath != "" {
		cfg.Mapping.IndexPath = opts.indexPath
	}
	if opts.simplePath != "" {
		cfg.Mapping.SimplePath = opts.simplePath
	}
	if opts.tabularPath != "" {
		cfg.Mapping.TabularPath = opts.tabularPath
	}
	if opts.prefsPath != "" {
		cfg.PrefsPath = opts.prefsPath
	}
}

func buildClassifier(opts cliOptions, cfg recognition.Config) (recognition.Classifier, error) {
	if opts.scoresPath != "" {
		scores, err := readScores(opts.scoresPath)
		if err != nil {
			return nil, err
		}
		return &recognition.StaticClassifier{Scores: scores}, nil
	}
	if cfg.Classifier.ModelPath == "" {
		return nil, errors.New("either --model or --scores is required")
	}
	classifier, err := recognition.NewOrtClassifier(cfg.Classifier, cfg.Normalizer.Size)
	if err != nil {
		return nil, fmt.Errorf("init classifier: %w", err)
	}
	return classifier, nil
}

func readScores(path string) ([]float32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	fields := strings.FieldsFunc(string(data), func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r' || r == ' ' || r == '\t'
	})
	scores := make([]float32, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.ParseFloat(field, 32)
		if err != nil {
			return nil, fmt.Errorf("parse score %q: %w", field, err)
		}
		scores = append(scores, float32(v))
	}
	if len(scores) == 0 {
		return nil, errors.New("scores file is empty")
	}
	return scores, nil
}

func decodeImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func printSuggestions(suggestions []recognition.Suggestion) {
	if len(suggestions) == 0 {
		fmt.Println("no suggestions available")
		return
	}
	for i, s := range suggestions {
		marker := " "
		if s.LastChosen {
			marker = "*"
		}
		line := fmt.Sprintf("%d.%s %-20s score=%.3f (confidence=%.2f priority=%.2f)",
			i+1, marker, s.Command, s.CombinedScore, s.Confidence, s.Priority)
		if s.Context != "" {
			line += " - " + s.Context
		}
		fmt.Println(line)
	}
}
