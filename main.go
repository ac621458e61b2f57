package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/caarlos0/env/v9"
	"github.com/chzyer/readline"
	"github.com/joho/godotenv"
	"golang.org/x/term"

	"github.com/mzaitsev/ag/pkg/deepseek"
	"github.com/mzaitsev/ag/pkg/domain"
	"github.com/mzaitsev/ag/pkg/logger"
	"github.com/mzaitsev/ag/pkg/ocr"
	"github.com/mzaitsev/ag/pkg/render"
	"github.com/mzaitsev/ag/pkg/services"
)

type Config struct {
	DeepSeekAPIKey  string   `env:"DEEPSEEK_API_KEY,required"`
	DeepSeekBaseURL string   `env:"DEEPSEEK_BASE_URL" envDefault:"https://api.deepseek.com"`
	OCRLanguages    []string `env:"OCR_LANGUAGES" envSeparator:" " envDefault:"chi_sim eng"`
}

type flags struct {
	query    string
	querySet bool
	image    bool
	deep     bool
	chat     bool
	stream   bool
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(os.Args[1:]); err != nil {
		slog.Error("exiting due to error", logger.Err(err))
		os.Exit(1)
	}
}

func runMain(args []string) error {
	fl, err := parseFlags(args)
	if err != nil {
		return err
	}

	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parsing env config: %w", err)
	}

	client, err := deepseek.NewClient(cfg.DeepSeekAPIKey, cfg.DeepSeekBaseURL)
	if err != nil {
		return fmt.Errorf("creating deepseek client: %w", err)
	}

	renderer := render.NewRenderer(os.Stdout)
	model := domain.SelectModel(fl.deep)

	if fl.chat {
		rl, err := readline.New("\nUser> ")
		if err != nil {
			return fmt.Errorf("creating line reader: %w", err)
		}
		defer rl.Close()

		chatService := services.NewChatService(client, renderer, rl, os.Stdout, model, fl.stream)
		return chatService.Run(context.Background())
	}

	if !fl.querySet {
		return nil
	}
	if fl.query == "" {
		return fmt.Errorf("query is empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	contents := readContents(os.Stdin, fl.image, cfg.OCRLanguages)

	queryService := services.NewQueryService(client, renderer, model, fl.stream)
	return queryService.Run(ctx, fl.query, contents, fl.image)
}

func parseFlags(args []string) (flags, error) {
	fl := flags{}

	fs := flag.NewFlagSet("ag", flag.ContinueOnError)
	fs.StringVar(&fl.query, "q", "", "query text")
	fs.StringVar(&fl.query, "query", "", "query text")
	fs.BoolVar(&fl.image, "i", false, "treat standard input as image bytes and run OCR")
	fs.BoolVar(&fl.image, "image", false, "treat standard input as image bytes and run OCR")
	fs.BoolVar(&fl.deep, "d", false, "use the deep reasoning model")
	fs.BoolVar(&fl.deep, "deep", false, "use the deep reasoning model")
	fs.BoolVar(&fl.chat, "c", false, "enter interactive chat mode")
	fs.BoolVar(&fl.chat, "chat", false, "enter interactive chat mode")
	fs.BoolVar(&fl.stream, "s", true, "stream the response (default: enabled)")
	fs.BoolVar(&fl.stream, "stream", true, "stream the response (default: enabled)")

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}

	// An explicitly supplied empty query must fail, so "set" and
	// "empty" have to be distinguishable.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "q" || f.Name == "query" {
			fl.querySet = true
		}
	})

	return fl, nil
}

// readContents returns the grounding context piped on stdin: OCR text
// in image mode, trimmed UTF-8 text otherwise. An interactive terminal
// or a read failure yields no context, and the query proceeds alone.
func readContents(in *os.File, image bool, languages []string) string {
	if term.IsTerminal(int(in.Fd())) {
		return ""
	}

	data, err := io.ReadAll(in)
	if err != nil {
		slog.Error("reading stdin", logger.Err(err))
		return ""
	}

	if image {
		return ocr.NewReader(languages).Recognize(data)
	}
	return strings.TrimSpace(string(data))
}
