package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"slide-rag/internal/config"
	"slide-rag/internal/embedding"
	"slide-rag/internal/helper"
	"slide-rag/internal/llmservice"
	"slide-rag/internal/models"
	"slide-rag/internal/parser"
	"slide-rag/internal/server"
	"slide-rag/internal/session"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the yaml config file")
	filesFlag := flag.String("files", "", "Comma-separated paths to PDF files (max 5)")
	query := flag.String("query", "", "Single question to answer, then exit")
	serve := flag.Bool("serve", false, "Start the HTTP server instead of the interactive loop")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	log.Debug().Interface("config", cfg).Msg("Loaded config")

	embedder, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}
	generator, err := llmservice.NewClient(&cfg.ChatLLM)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing chat model")
	}

	sess := session.New(cfg, parser.NewPDFExtractor(), embedder, generator)

	ctx := context.Background()

	if *filesFlag != "" {
		files, err := readFiles(strings.Split(*filesFlag, ","))
		if err != nil {
			log.Fatal().Err(err).Msg("Error reading files")
		}
		if err := sess.Upload(ctx, files); err != nil {
			log.Fatal().Err(err).Msg("Error indexing documents")
		}
	}

	if *serve {
		srv := server.New(sess, cfg.RAG.MaxFiles)
		addr := ":" + cfg.Server.Port
		log.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := http.ListenAndServe(addr, srv.Routes()); err != nil {
			log.Fatal().Err(err).Msg("Server stopped")
		}
		return
	}

	if *query != "" {
		answer(ctx, sess, *query)
		return
	}

	interactiveLoop(ctx, sess)
}

func readFiles(paths []string) ([]parser.UploadedFile, error) {
	var files []parser.UploadedFile
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		name := p
		if i := strings.LastIndexByte(p, '/'); i >= 0 {
			name = p[i+1:]
		}
		files = append(files, parser.UploadedFile{Name: name, Data: data})
	}
	return files, nil
}

func answer(ctx context.Context, sess *session.Session, question string) {
	res, err := sess.Ask(ctx, question)
	if err != nil {
		log.Fatal().Err(err).Msg("Error answering question")
	}
	if res.Kind.IsWarning() {
		log.Warn().Msg(res.Text)
		return
	}
	fmt.Printf("%s\n\n", res.Text)
}

func interactiveLoop(ctx context.Context, sess *session.Session) {
	fmt.Println("Ajukan pertanyaan berdasarkan dokumen yang telah diunggah.")
	fmt.Println("Perintah: /history /chunks /reset /reset-all /exit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/exit":
			return
		case "/reset":
			sess.SoftReset()
			fmt.Println("Riwayat telah direset.")
			continue
		case "/reset-all":
			sess.HardReset()
			fmt.Println("Sesi telah direset. Unggah dokumen baru untuk memulai.")
			continue
		case "/history":
			for i, turn := range sess.History() {
				fmt.Printf("%d. Kamu: %s\n   Bot: %s\n", i+1, turn.Question, truncate(turn.Answer, 120))
			}
			continue
		case "/chunks":
			previews, err := sess.PreviewChunks(ctx, 5)
			if err != nil {
				log.Warn().Err(err).Msg("Cannot preview chunks")
				continue
			}
			helper.PrettyPrint(previews)
			continue
		}

		res, err := sess.Ask(ctx, line)
		if err != nil {
			log.Error().Err(err).Msg("Error answering question")
			continue
		}
		printResult(res)
	}
}

func printResult(res models.RouteResult) {
	if res.Kind.IsWarning() {
		log.Warn().Msg(res.Text)
		return
	}
	fmt.Printf("%s\n\n", res.Text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
