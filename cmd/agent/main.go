package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/akepo225/offline-coding-agent/internal/agent"
	"github.com/akepo225/offline-coding-agent/internal/config"
	"github.com/akepo225/offline-coding-agent/internal/feedback"
	"github.com/akepo225/offline-coding-agent/internal/history"
	"github.com/akepo225/offline-coding-agent/internal/llm"
	"github.com/akepo225/offline-coding-agent/internal/parser"
	"github.com/akepo225/offline-coding-agent/internal/session"
	"github.com/akepo225/offline-coding-agent/internal/tools"
	"github.com/akepo225/offline-coding-agent/pkg/log"
)

func main() {
	// .env is optional; missing file is not an error.
	_ = godotenv.Load()

	var (
		configPath  = flag.String("config", "", "path to a YAML config file")
		model       = flag.String("model", "", "model name, overrides config")
		prompt      = flag.String("prompt", "", "run a single task and exit instead of the REPL")
		files       = flag.String("files", "", "comma-separated files to attach to the session")
		workDir     = flag.String("workdir", "", "working directory for tools, overrides config")
		autoConfirm = flag.Bool("auto-confirm", false, "execute tools without asking")
		maxIter     = flag.Int("max-iterations", 0, "tool-feedback cycles per request, overrides config")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *model != "" {
		cfg.LLM.Model = *model
	}
	if *workDir != "" {
		cfg.Tools.WorkDir = *workDir
	}
	if *autoConfirm {
		cfg.Agent.AutoConfirm = true
	}
	if *maxIter > 0 {
		cfg.Agent.MaxIterations = *maxIter
	}

	if err := setupLogging(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *prompt, splitList(*files)); err != nil {
		log.Error("agent: %v", err)
		os.Exit(1)
	}
}

func setupLogging(cfg config.LogConfig) error {
	level := log.ParseLevel(cfg.Level)
	if cfg.File == "" {
		log.InitLogger(level)
		return nil
	}
	fileLogger, err := log.NewFileLogger(cfg.File, level)
	if err != nil {
		return err
	}
	// File logger lives for the process; nothing to close explicitly.
	_ = fileLogger
	return nil
}

func run(cfg *config.Config, prompt string, attach []string) error {
	client, err := llm.NewClient(&cfg.LLM)
	if err != nil {
		return fmt.Errorf("llm client: %w", err)
	}

	registry, err := tools.DefaultRegistry(tools.Config{
		WorkDir:        cfg.Tools.WorkDir,
		Interpreter:    cfg.Tools.Interpreter,
		CommandTimeout: time.Duration(cfg.Tools.CommandTimeout) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("tool registry: %w", err)
	}

	safety := tools.NewSafetyChecker(cfg.Safety.ExtraPatterns...)
	executor := tools.NewExecutor(registry, safety, confirmOnStdin, cfg.Agent.AutoConfirm)
	formatter := feedback.NewFormatter(feedback.Config{
		MaxContentBytes: cfg.Feedback.MaxContentBytes,
		MinWriteBytes:   cfg.Feedback.MinWriteBytes,
	})
	conv := session.NewConversation(cfg.Agent.MaxHistory)

	var audit *history.Store
	if cfg.Agent.HistoryDB != "" {
		audit, err = history.NewStore(cfg.Agent.HistoryDB)
		if err != nil {
			return fmt.Errorf("history store: %w", err)
		}
		defer audit.Close()
	}

	loop, err := agent.NewLoop(agent.LoopOptions{
		Generator:     client,
		Registry:      registry,
		Executor:      executor,
		Formatter:     formatter,
		Conversation:  conv,
		Audit:         audit,
		MaxIterations: cfg.Agent.MaxIterations,
	})
	if err != nil {
		return err
	}
	local := agent.NewLocalAgent(loop)
	defer local.Close()

	for _, path := range attach {
		if err := attachFile(conv, path); err != nil {
			log.Warn("attach %s: %v", path, err)
		}
	}

	if prompt != "" {
		return runOnce(local, prompt)
	}
	return runREPL(local, registry, executor, audit)
}

func runOnce(a *agent.LocalAgent, prompt string) error {
	result, err := a.Execute(context.Background(), agent.Request{Task: prompt})
	if err != nil {
		return err
	}
	printResult(result)
	return nil
}

func runREPL(a *agent.LocalAgent, registry *tools.Registry, executor *tools.Executor, audit *history.Store) error {
	conv := a.Loop().Conversation()
	fmt.Printf("offline coding agent (session %s)\n", conv.ID())
	fmt.Println("type a task, or /help for commands")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := handleCommand(line, a, registry, executor, audit); quit {
				return nil
			}
			continue
		}

		result, err := a.Execute(context.Background(), agent.Request{Task: line})
		if err != nil {
			log.Error("request failed: %v", err)
			continue
		}
		printResult(result)
	}
}

// handleCommand processes a slash command and reports whether to exit.
func handleCommand(line string, a *agent.LocalAgent, registry *tools.Registry, executor *tools.Executor, audit *history.Store) bool {
	conv := a.Loop().Conversation()
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Println("  /add <path>     attach a file to the session context")
		fmt.Println("  /remove <path>  detach a file")
		fmt.Println("  /list           show attached files")
		fmt.Println("  /clear          reset the conversation, keep attachments")
		fmt.Println("  /tools          list available tools")
		fmt.Println("  /auto           toggle automatic tool confirmation")
		fmt.Println("  /history        show recorded tool executions for this session")
		fmt.Println("  /quit           exit")

	case "/add":
		if arg == "" {
			fmt.Println("usage: /add <path>")
			break
		}
		if err := attachFile(conv, arg); err != nil {
			fmt.Printf("add failed: %v\n", err)
			break
		}
		fmt.Printf("attached %s\n", arg)

	case "/remove":
		if conv.DetachFile(arg) {
			fmt.Printf("detached %s\n", arg)
		} else {
			fmt.Printf("%s is not attached\n", arg)
		}

	case "/list":
		attached := conv.AttachedFiles()
		if len(attached) == 0 {
			fmt.Println("no files attached")
			break
		}
		for _, path := range attached {
			fmt.Printf("  %s\n", path)
		}

	case "/clear":
		a.Loop().Reset()
		fmt.Println("conversation cleared")

	case "/tools":
		for _, tool := range registry.Catalog() {
			fmt.Printf("  %-18s %s\n", tool.Name(), tool.Description())
		}

	case "/auto":
		executor.SetAutoConfirm(!executor.AutoConfirm())
		fmt.Printf("auto-confirm: %v\n", executor.AutoConfirm())

	case "/history":
		if audit == nil {
			fmt.Println("history database not configured (set AGENT_HISTORY_DB)")
			break
		}
		records, err := audit.ListSession(context.Background(), conv.ID())
		if err != nil {
			fmt.Printf("history: %v\n", err)
			break
		}
		if len(records) == 0 {
			fmt.Println("no tool executions recorded yet")
			break
		}
		for _, rec := range records {
			status := "ok"
			if !rec.Success {
				status = "failed"
			}
			fmt.Printf("  #%d iter %d  %-14s %s  %s\n",
				rec.ID, rec.Iteration, rec.ToolName, status,
				rec.CreatedAt.Format(time.RFC3339))
		}

	default:
		fmt.Printf("unknown command %s (try /help)\n", cmd)
	}
	return false
}

func printResult(result *agent.Result) {
	if len(result.Records) > 0 {
		for _, rec := range result.Records {
			status := "ok"
			if rec.IsError {
				status = "failed"
			}
			fmt.Printf("[%s: %s]\n", rec.ToolName, status)
		}
	}
	if result.HitIterationCap {
		fmt.Println("[stopped at iteration cap]")
	}
	fmt.Println(result.Content)
}

// confirmOnStdin asks the operator before a guarded tool runs.
func confirmOnStdin(call parser.ToolCall) bool {
	fmt.Printf("about to run %s:\n  %s\nproceed? [y/N] ", call.Name, call.Args.String())
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func attachFile(conv *session.Conversation, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	conv.AttachFile(filepath.ToSlash(path), string(data))
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
