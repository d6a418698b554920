// Package main provides the Seminar CLI application entry point.
// Seminar is a terminal chat with scripted persona agents backed by LLM
// completions, with mention targeting and auto-debate rounds.
package main

import (
	"bufio"
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"seminar/internal/animator"
	"seminar/internal/auth"
	"seminar/internal/logger"
	"seminar/internal/orchestrator"
	"seminar/internal/services"
	"seminar/internal/testutils"
	"seminar/pkg/seminartypes"
)

var (
	logLevel   string
	logFile    string
	testMode   bool
	provider   string
	model      string
	autoDebate bool
	maxRounds  int
	personas   string
	userName   string
	version    = "0.1.0" // This could be set at build time
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "seminar",
	Short: "Seminar - multi-persona LLM chat",
	Long: `Seminar is a terminal chat application that lets you converse with one or
more scripted persona agents, each backed by an LLM completion call.
Mention a persona with @name to address it directly; enable auto-debate to
let the personas argue among themselves.`,
	Run: runChat, // Default behavior is the interactive chat loop
}

// chatCmd represents the chat command (explicit version of default behavior)
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat loop",
	Run:   runChat,
}

// personasCmd lists the persona catalog
var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List the available personas by category",
	Run:   runPersonas,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("Seminar v%s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	rootCmd.PersistentFlags().BoolVar(&testMode, "test-mode", false, "Run in deterministic test mode")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Inference provider (openai|anthropic|gemini) [default: openai]")
	rootCmd.PersistentFlags().StringVar(&model, "model", "", "Model name override for the selected provider")
	rootCmd.PersistentFlags().BoolVar(&autoDebate, "auto-debate", false, "Let personas run additional debate rounds after the initial responses")
	rootCmd.PersistentFlags().IntVar(&maxRounds, "max-rounds", 3, "Maximum auto-debate rounds per turn")
	rootCmd.PersistentFlags().StringVar(&personas, "personas", "socrates", "Comma-separated persona ids active at startup")
	rootCmd.PersistentFlags().StringVar(&userName, "user", "local", "User id for the chat session")

	for _, flag := range []string{"log-level", "log-file", "test-mode", "provider", "model", "auto-debate", "max-rounds", "personas"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(versionCmd)

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env is optional; environment variables win
	_ = godotenv.Load()

	if err := logger.Configure(logLevel, logFile, testMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

// initializeServices registers and initializes every service the chat loop
// needs, in the global registry.
func initializeServices() (*services.PersonaCatalogService, *services.GatewayService, *services.RenderService, *auth.SessionService, error) {
	services.SetGlobalRegistry(services.NewRegistry())
	registry := services.GetGlobalRegistry()

	catalog := services.NewPersonaCatalogService()
	gateway := services.NewGatewayService(provider, model)
	render := services.NewRenderService()
	session := auth.NewSessionService(testutils.TestMode(testMode))

	for _, svc := range []seminartypes.Service{catalog, gateway, render, session} {
		if err := registry.RegisterService(svc); err != nil {
			return nil, nil, nil, nil, err
		}
	}
	if err := registry.InitializeAll(); err != nil {
		return nil, nil, nil, nil, err
	}
	logger.Debug("Services initialized", "count", len(registry.GetAllServices()))
	return catalog, gateway, render, session, nil
}

func runChat(_ *cobra.Command, _ []string) {
	logger.Info("Starting Seminar", "version", version)

	catalog, gateway, render, session, err := initializeServices()
	if err != nil {
		logger.Fatal("Failed to initialize services", "error", err)
	}
	if err := session.Login(userName); err != nil {
		logger.Fatal("Failed to start session", "error", err)
	}

	anim := animator.New()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	orch := orchestrator.New(catalog, gateway, anim, rng, testutils.TestMode(testMode))

	tw := &typewriter{orch: orch, render: render, catalog: catalog}
	orch.SetCallbacks(tw.tick, nil)

	active := splitIDs(personas)
	active = filterKnown(catalog, active)
	if len(active) == 0 {
		fmt.Println("No valid personas selected; defaulting to socrates.")
		active = []string{"socrates"}
	}

	fmt.Printf("Seminar v%s - provider %s\n", version, gateway.ProviderName())
	fmt.Printf("Active personas: %s\n", strings.Join(active, ", "))
	fmt.Println("Type a message, @name to address a persona, or /help for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := handleCommand(ctx, line, orch, catalog, render, &active); quit {
				break
			}
			continue
		}

		if !session.IsActive() {
			fmt.Println("Session expired; restart seminar to continue.")
			break
		}

		orch.SubmitTurn(ctx, seminartypes.TurnRequest{
			UserText:         line,
			ActivePersonaIDs: active,
			AutoDebate:       autoDebate,
			MaxRounds:        maxRounds,
		})
		fmt.Println()
	}

	session.Logout()
	logger.Info("Seminar session ended")
}

// handleCommand executes one slash command. Returns true when the loop
// should exit.
func handleCommand(ctx context.Context, line string, orch *orchestrator.Orchestrator, catalog *services.PersonaCatalogService, render *services.RenderService, active *[]string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Println("/personas            list available personas")
		fmt.Println("/select id[,id...]   replace the active persona selection")
		fmt.Println("/active              show the active selection")
		fmt.Println("/debate on|off       toggle auto-debate")
		fmt.Println("/rounds N            set max auto-debate rounds")
		fmt.Println("/params id temp max   override a persona's temperature and max tokens")
		fmt.Println("/continue            let the personas continue without a new question")
		fmt.Println("/clear               reset the conversation")
		fmt.Println("/quit                exit")
	case "/personas":
		printCatalog(catalog, render)
	case "/select":
		if len(fields) < 2 {
			fmt.Println("Usage: /select id[,id...]")
			break
		}
		selected := filterKnown(catalog, splitIDs(fields[1]))
		if len(selected) == 0 {
			fmt.Println("No known persona ids in selection.")
			break
		}
		*active = selected
		fmt.Printf("Active personas: %s\n", strings.Join(*active, ", "))
	case "/active":
		fmt.Printf("Active personas: %s\n", strings.Join(*active, ", "))
	case "/debate":
		if len(fields) == 2 && fields[1] == "on" {
			autoDebate = true
		} else if len(fields) == 2 && fields[1] == "off" {
			autoDebate = false
		} else {
			fmt.Println("Usage: /debate on|off")
			break
		}
		fmt.Printf("Auto-debate: %v\n", autoDebate)
	case "/rounds":
		if len(fields) != 2 {
			fmt.Println("Usage: /rounds N")
			break
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			fmt.Println("Rounds must be a positive number.")
			break
		}
		maxRounds = n
		fmt.Printf("Max rounds: %d\n", maxRounds)
	case "/params":
		if len(fields) != 4 {
			fmt.Println("Usage: /params id temperature max_tokens")
			break
		}
		id := strings.ToLower(fields[1])
		if !catalog.HasPersona(id) {
			fmt.Printf("Unknown persona id %q.\n", id)
			break
		}
		temp, err := strconv.ParseFloat(fields[2], 64)
		if err != nil || temp <= 0 || temp > 2 {
			fmt.Println("Temperature must be a number in (0, 2].")
			break
		}
		tokens, err := strconv.Atoi(fields[3])
		if err != nil || tokens < 1 {
			fmt.Println("Max tokens must be a positive number.")
			break
		}
		orch.SetPersonaParams(id, seminartypes.ModelParams{Temperature: temp, MaxTokens: tokens})
		fmt.Printf("Params for %s: temperature %.2f, max tokens %d\n", catalog.DisplayName(id), temp, tokens)
	case "/continue":
		orch.Continue(ctx, *active)
		fmt.Println()
	case "/clear":
		orch.Reset()
		fmt.Println("Conversation cleared.")
	default:
		fmt.Printf("Unknown command %s (try /help)\n", fields[0])
	}
	return false
}

func runPersonas(_ *cobra.Command, _ []string) {
	catalog, _, render, _, err := initializeServices()
	if err != nil {
		logger.Fatal("Failed to initialize services", "error", err)
	}
	printCatalog(catalog, render)
}

func printCatalog(catalog *services.PersonaCatalogService, render *services.RenderService) {
	for _, category := range catalog.PersonasByCategory() {
		fmt.Printf("\n%s\n", render.SystemNotice(category.Name))
		for _, p := range category.Personas {
			fmt.Printf("  %s %s\n", render.PersonaLabel(p.ID, p.DisplayName), p.Description)
		}
	}
}

// typewriter prints animated messages to the terminal as the orchestrator
// reveals them, one label per message and one character per tick.
type typewriter struct {
	orch    *orchestrator.Orchestrator
	render  *services.RenderService
	catalog *services.PersonaCatalogService

	currentID string
	printed   int
}

func (tw *typewriter) tick() {
	msgs := tw.orch.Transcript().Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		if !msg.IsAnimating {
			continue
		}

		if msg.ID != tw.currentID {
			tw.currentID = msg.ID
			tw.printed = 0
			fmt.Println()
			if label := tw.render.MessageLabel(&msg, tw.catalog.DisplayName(msg.AuthorID)); label != "" {
				fmt.Printf("%s ", label)
			}
			if msg.ReplyTo != seminartypes.NoReply && msg.ReplyTo < len(msgs) {
				target := msgs[msg.ReplyTo]
				fmt.Printf("(replying to %s) ", tw.catalog.DisplayName(target.AuthorID))
			}
		}

		if len(msg.VisibleText) > tw.printed {
			fmt.Print(msg.VisibleText[tw.printed:])
			tw.printed = len(msg.VisibleText)
		}
		return
	}
}

func splitIDs(csv string) []string {
	var ids []string
	for _, part := range strings.Split(csv, ",") {
		if id := strings.TrimSpace(strings.ToLower(part)); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func filterKnown(catalog *services.PersonaCatalogService, ids []string) []string {
	var known []string
	for _, id := range ids {
		if catalog.HasPersona(id) {
			known = append(known, id)
		} else {
			fmt.Printf("Unknown persona id %q ignored.\n", id)
		}
	}
	return known
}
