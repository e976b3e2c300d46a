// Command weather is an interactive terminal front-end for the weather lookup.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"weather-lookup/app"
	"weather-lookup/datasource"
	"weather-lookup/prefs"
	"weather-lookup/search"
)

const usage = `Digite o nome de uma cidade (a busca começa sozinha após uma pausa) ou um comando:
  /search        buscar agora
  /locate        usar minha localização
  /history       mostrar buscas recentes
  /replay N      repetir a busca N do histórico
  /reset         limpar
  /theme [tema]  mostrar, alternar ou definir o tema (light|dark)
  /quit          sair
`

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", slog.Any("error", err))
	}

	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	logLevel := flag.String("log-level", "warn", "Log level for the terminal client")
	flag.Parse()

	config, err := datasource.LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	config.Log.Level = *logLevel

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: config.LogLevel()}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := &renderer{w: os.Stdout}
	a, err := app.New(ctx, config, logger, out.state)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	out.printf("%s", usage)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !run(ctx, a, out, line) {
				return
			}
		}
	}
}

// run executes one input line and reports whether the session continues
func run(ctx context.Context, a *app.App, out *renderer, line string) bool {
	cmd, arg := parseCommand(line)

	switch cmd {
	case "":
		a.Search.SetQuery(line)
	case "quit", "exit":
		return false
	case "search":
		report(out, a.Search.Search(ctx))
	case "locate":
		out.printf("Obtendo localização...\n")
		report(out, a.Search.Locate(ctx))
	case "history":
		out.history(a.Search.History())
	case "replay":
		entries := a.Search.History()
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(entries) {
			out.printf("Use /replay N com N entre 1 e %d.\n", len(entries))
			return true
		}
		report(out, a.Search.Replay(ctx, entries[n-1]))
	case "reset":
		a.Search.Reset()
		out.printf("Pronto.\n")
	case "theme":
		theme(ctx, a.Themes, out, arg)
	default:
		out.printf("Comando desconhecido: /%s\n%s", cmd, usage)
	}
	return true
}

// parseCommand splits "/replay 2" into ("replay", "2"); free text yields an empty command
func parseCommand(line string) (string, string) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "/") {
		return "", ""
	}
	cmd, arg, _ := strings.Cut(trimmed[1:], " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

// report prints guard rejections; attempt outcomes arrive through the renderer
func report(out *renderer, err error) {
	switch {
	case errors.Is(err, search.ErrQueryTooShort):
		out.printf("Digite pelo menos %d caracteres.\n", search.MinQueryLength)
	case errors.Is(err, search.ErrBusy):
		out.printf("Aguarde, já existe uma busca em andamento.\n")
	}
}

func theme(ctx context.Context, themes *prefs.Themes, out *renderer, arg string) {
	var (
		t   prefs.Theme
		err error
	)
	if arg == "" {
		t, err = themes.Toggle(ctx)
	} else if t, err = prefs.ParseTheme(arg); err == nil {
		err = themes.Set(ctx, t)
	}
	if err != nil {
		out.printf("Erro: %v\n", err)
		return
	}
	out.theme(t)
}
