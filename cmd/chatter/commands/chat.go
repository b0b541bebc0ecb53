package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	ai "github.com/spetersoncode/chatter"
	"github.com/spetersoncode/chatter/agent"
	"github.com/spetersoncode/chatter/config"
	"github.com/spetersoncode/chatter/internal/logging"
	"github.com/spetersoncode/chatter/permission"
	"github.com/spetersoncode/chatter/session"
	"github.com/spetersoncode/chatter/template"
	"github.com/spetersoncode/chatter/tool"
)

var (
	chatModel    string
	chatProvider string
	chatSystem   string
	chatLoad     string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session. Responses stream token by token.

Slash commands inside the session:
  /help                 Show command help
  /clear                Clear conversation history
  /save <file>          Save session to file
  /load <file>          Load session from file
  /system [text]        Show or set the system instruction
  /model [name]         Show or switch the model
  /template <name>      Apply a template as the system instruction
  /templates            List available templates
  /history              Show the conversation transcript
  /info                 Show session details
  /agent <subcommand>   on|off|status|dry-run|allow-path|forbid-path|check-path
  /quit                 Exit

Ctrl-C aborts the current turn; the conversation survives.`,
}

func init() {
	chatCmd.RunE = runChat
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "Model to use")
	chatCmd.Flags().StringVarP(&chatProvider, "provider", "p", "", "Provider (google|ollama|anthropic|openai)")
	chatCmd.Flags().StringVar(&chatSystem, "system", "", "System instruction")
	chatCmd.Flags().StringVar(&chatLoad, "load", "", "Session file to resume")
}

// chatState holds everything a running REPL needs.
type chatState struct {
	cfg      *config.Config
	provider ai.ChatProvider
	session  *session.Session
	guard    *permission.Guard
	registry *tool.Registry
	mode     *tool.Mode
	out      *bufio.Writer
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	providerName := cfg.Provider
	if chatProvider != "" {
		providerName = chatProvider
	}
	prov, err := ai.ParseProvider(providerName)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client, err := newProvider(ctx, cfg, prov)
	if err != nil {
		return err
	}

	model := cfg.DefaultModel
	if chatModel != "" {
		model = chatModel
	}

	sess := session.New(prov, model)
	if chatLoad != "" {
		if err := sess.Load(resolveSessionPath(cfg, chatLoad)); err != nil {
			return err
		}
		if sess.Provider() != prov {
			fmt.Printf("note: session was recorded with provider %s; continuing with %s\n", sess.Provider(), prov)
			sess.SetProvider(prov)
		}
	}
	instruction := cfg.SystemInstruction
	if chatSystem != "" {
		instruction = chatSystem
	}
	if instruction != "" {
		if err := sess.SetSystemInstruction(instruction); err != nil {
			return err
		}
	}

	guard, err := buildGuard(cfg)
	if err != nil {
		return err
	}
	registry, mode, err := buildRegistry(cfg, guard)
	if err != nil {
		return err
	}

	st := &chatState{
		cfg:      cfg,
		provider: client,
		session:  sess,
		guard:    guard,
		registry: registry,
		mode:     mode,
		out:      bufio.NewWriter(os.Stdout),
	}

	fmt.Printf("chatter %s, provider %s", Version, sess.Provider())
	if sess.Model() != "" {
		fmt.Printf(", model %s", sess.Model())
	}
	fmt.Println()
	if guard.Enabled() {
		fmt.Println("agent mode is on; /agent status shows the allowed paths")
	}
	fmt.Println("type /help for commands, /quit to exit")

	return st.repl(ctx)
}

func (st *chatState) repl(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("\n> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := st.handleCommand(line)
			if err != nil {
				fmt.Printf("error: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		st.runTurn(ctx, line)
		st.autoSave()
	}
}

// autoSave persists the session after each turn when enabled.
func (st *chatState) autoSave() {
	if !st.cfg.AutoSave || st.cfg.SessionsDir == "" {
		return
	}
	if err := os.MkdirAll(st.cfg.SessionsDir, 0o755); err != nil {
		logging.Warn().Err(err).Msg("auto-save failed")
		return
	}
	path := filepath.Join(st.cfg.SessionsDir, st.session.ID()+".json")
	if err := st.session.Save(path); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("auto-save failed")
	}
}

// runTurn sends one user message through the orchestrator and prints
// the streamed response. Ctrl-C cancels only this turn.
func (st *chatState) runTurn(ctx context.Context, input string) {
	if err := st.session.BeginTurn(); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	defer st.session.EndTurn()

	st.session.Append(ai.NewUserMessage(input))

	turnCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	registry := st.registry
	model := st.session.Model()
	if st.guard.Enabled() {
		if !st.provider.SupportsTools(turnCtx, model) {
			fmt.Println("note: this model does not support tools; continuing without them")
			registry = nil
		}
	} else {
		registry = nil
	}

	var opts []agent.Option
	if model != "" {
		opts = append(opts, agent.WithModel(model))
	}
	if st.cfg.Agent.MaxToolIterations > 0 {
		opts = append(opts, agent.WithMaxToolIterations(st.cfg.Agent.MaxToolIterations))
	}

	ag := agent.New(st.provider, registry)
	events := ag.RunStream(turnCtx, st.session.PromptMessages(), opts...)

	for ev := range events {
		switch ev.Type {
		case agent.EventStreamDelta:
			st.out.WriteString(ev.Delta)
			st.out.Flush()

		case agent.EventToolCallStarted:
			if ev.ToolCall != nil {
				fmt.Printf("\n[tool] %s %s\n", ev.ToolCall.Name, ev.ToolCall.Arguments)
			}

		case agent.EventToolResult:
			if ev.ToolResult != nil {
				if ev.ToolResult.IsError {
					fmt.Printf("[tool] %s failed: %s\n", ev.ToolResult.Name, ev.ToolResult.Content)
				}
				st.session.Append(ai.NewToolResultMessage(*ev.ToolResult))
			}

		case agent.EventStepComplete:
			if ev.Response != nil && len(ev.Response.ToolCalls) > 0 {
				st.session.Append(ai.Message{
					Role:      ai.RoleAssistant,
					Content:   ev.Response.Content,
					ToolCalls: ev.Response.ToolCalls,
				})
			}

		case agent.EventAgentComplete:
			st.out.Flush()
			fmt.Println()
			reason := agent.TerminationReason(ev.Message)
			switch reason {
			case agent.TerminationComplete, agent.TerminationCustom:
				if ev.Response != nil && ev.Response.Content != "" {
					st.session.Append(ai.Message{
						Role:    ai.RoleAssistant,
						Content: ev.Response.Content,
					})
				}
			case agent.TerminationMaxIterations:
				diag := fmt.Sprintf("Tool iteration limit reached after %d rounds; stopping this turn. The conversation can continue with a new message.", ev.Step-1)
				fmt.Println(diag)
				st.session.Append(ai.Message{Role: ai.RoleAssistant, Content: diag})
			case agent.TerminationCancelled:
				fmt.Println("turn aborted")
			}

		case agent.EventError:
			st.out.Flush()
			if errors.Is(ev.Error, context.Canceled) {
				fmt.Println("\nturn aborted")
			} else {
				fmt.Printf("\nerror: %v\n", ev.Error)
			}
			logging.Error().Err(ev.Error).Msg("turn failed")
		}
	}
}

func (st *chatState) handleCommand(line string) (quit bool, err error) {
	parts := strings.SplitN(line, " ", 2)
	cmd := parts[0]
	args := ""
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}

	switch cmd {
	case "/quit", "/exit":
		return true, nil

	case "/help":
		fmt.Print(chatCmd.Long)
		fmt.Println()

	case "/clear":
		if err := st.session.Clear(); err != nil {
			return false, err
		}
		fmt.Println("conversation history cleared")

	case "/save":
		if args == "" {
			return false, fmt.Errorf("usage: /save <file>")
		}
		path := resolveSessionPath(st.cfg, args)
		if err := st.session.Save(path); err != nil {
			return false, err
		}
		fmt.Printf("session saved to %s\n", path)

	case "/load":
		if args == "" {
			return false, fmt.Errorf("usage: /load <file>")
		}
		path := resolveSessionPath(st.cfg, args)
		if err := st.session.Load(path); err != nil {
			return false, err
		}
		fmt.Printf("session loaded from %s (%d messages)\n", path, st.session.Len())

	case "/system":
		if args == "" {
			if s := st.session.SystemInstruction(); s != "" {
				fmt.Printf("system instruction: %s\n", s)
			} else {
				fmt.Println("no system instruction set")
			}
			return false, nil
		}
		if err := st.session.SetSystemInstruction(args); err != nil {
			return false, err
		}
		fmt.Println("system instruction updated")

	case "/model":
		if args == "" {
			if m := st.session.Model(); m != "" {
				fmt.Printf("current model: %s\n", m)
			} else {
				fmt.Println("using the provider default model")
			}
			return false, nil
		}
		st.session.SetModel(args)
		fmt.Printf("switched to model %s\n", args)

	case "/template":
		if args == "" {
			return false, fmt.Errorf("usage: /template <name>")
		}
		mgr, err := templateManager()
		if err != nil {
			return false, err
		}
		tmpl, ok := mgr.Get(args)
		if !ok {
			return false, fmt.Errorf("template not found: %s", args)
		}
		if err := st.session.SetSystemInstruction(tmpl.Content); err != nil {
			return false, err
		}
		fmt.Printf("applied template %s: %s\n", tmpl.Name, tmpl.Description)

	case "/templates":
		mgr, err := templateManager()
		if err != nil {
			return false, err
		}
		printTemplates(mgr.List())

	case "/history":
		msgs := st.session.Messages()
		if len(msgs) == 0 {
			fmt.Println("no conversation history")
			return false, nil
		}
		fmt.Printf("conversation history (%d messages):\n", len(msgs))
		for _, msg := range msgs {
			printMessage(msg)
		}

	case "/info":
		fmt.Println("session:")
		fmt.Printf("  id:       %s\n", st.session.ID())
		fmt.Printf("  provider: %s\n", st.session.Provider())
		if m := st.session.Model(); m != "" {
			fmt.Printf("  model:    %s\n", m)
		}
		fmt.Printf("  messages: %d\n", st.session.Len())
		fmt.Printf("  created:  %s\n", st.session.CreatedAt().Format("2006-01-02 15:04:05 UTC"))
		fmt.Printf("  updated:  %s\n", st.session.UpdatedAt().Format("2006-01-02 15:04:05 UTC"))

	case "/agent":
		return false, st.handleAgentCommand(args)

	default:
		return false, fmt.Errorf("unknown command %s (type /help)", cmd)
	}
	return false, nil
}

func (st *chatState) handleAgentCommand(args string) error {
	parts := strings.SplitN(args, " ", 2)
	sub := parts[0]
	rest := ""
	if len(parts) > 1 {
		rest = strings.TrimSpace(parts[1])
	}

	switch sub {
	case "on", "enable":
		st.guard.SetEnabled(true)
		fmt.Printf("agent mode enabled; tools: %s\n", strings.Join(st.registry.Names(), ", "))

	case "off", "disable":
		st.guard.SetEnabled(false)
		fmt.Println("agent mode disabled")

	case "status":
		status := st.guard.Status()
		fmt.Println("agent:")
		fmt.Printf("  enabled:   %v\n", status.Enabled)
		fmt.Printf("  dry-run:   %v\n", st.mode.DryRun())
		fmt.Printf("  allowed:   %s\n", strings.Join(status.Allowed, ", "))
		if len(status.Forbidden) > 0 {
			fmt.Printf("  forbidden: %s\n", strings.Join(status.Forbidden, ", "))
		}
		fmt.Printf("  tools:     %s\n", strings.Join(st.registry.Names(), ", "))

	case "dry-run":
		switch rest {
		case "on":
			st.mode.SetDryRun(true)
			fmt.Println("dry-run enabled; write_file and update_file will simulate without touching disk")
		case "off":
			st.mode.SetDryRun(false)
			fmt.Println("dry-run disabled")
		case "", "status":
			fmt.Printf("dry-run is %s\n", onOff(st.mode.DryRun()))
		default:
			return fmt.Errorf("usage: /agent dry-run on|off")
		}

	case "allow-path":
		if rest == "" {
			return fmt.Errorf("usage: /agent allow-path <dir>")
		}
		if err := st.guard.Allow(rest); err != nil {
			return err
		}
		fmt.Printf("allowed %s\n", rest)

	case "forbid-path":
		if rest == "" {
			return fmt.Errorf("usage: /agent forbid-path <dir>")
		}
		if err := st.guard.Forbid(rest); err != nil {
			return err
		}
		fmt.Printf("forbade %s\n", rest)

	case "check-path":
		if rest == "" {
			return fmt.Errorf("usage: /agent check-path <path>")
		}
		if err := st.guard.Check(rest); err != nil {
			fmt.Printf("denied: %v\n", err)
		} else {
			fmt.Println("allowed")
		}

	default:
		return fmt.Errorf("usage: /agent on|off|status|dry-run|allow-path|forbid-path|check-path")
	}
	return nil
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func printMessage(msg ai.Message) {
	switch msg.Role {
	case ai.RoleUser:
		fmt.Printf("\nYou: %s\n", msg.Content)
	case ai.RoleAssistant:
		if msg.Content != "" {
			fmt.Printf("\nAssistant: %s\n", msg.Content)
		}
		for _, tc := range msg.ToolCalls {
			fmt.Printf("\nAssistant: [tool call] %s %s\n", tc.Name, tc.Arguments)
		}
	case ai.RoleTool:
		for _, tr := range msg.ToolResults {
			status := "ok"
			if tr.IsError {
				status = "error"
			}
			fmt.Printf("\nTool %s (%s): %s\n", tr.Name, status, tr.Content)
		}
	default:
		fmt.Printf("\n%s: %s\n", msg.Role, msg.Content)
	}
}

func printTemplates(templates []template.Template) {
	byCategory := make(map[string][]template.Template)
	var categories []string
	for _, t := range templates {
		if _, ok := byCategory[t.Category]; !ok {
			categories = append(categories, t.Category)
		}
		byCategory[t.Category] = append(byCategory[t.Category], t)
	}
	for _, cat := range categories {
		fmt.Printf("\n%s\n", cat)
		for _, t := range byCategory[cat] {
			marker := ""
			if t.Builtin {
				marker = " (built-in)"
			}
			fmt.Printf("  %s - %s%s\n", t.Name, t.Description, marker)
		}
	}
	fmt.Println()
}

// templateManager opens the user template directory under the config dir.
func templateManager() (*template.Manager, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return template.NewManager(filepath.Join(dir, "templates"))
}

// resolveSessionPath places bare filenames into the configured sessions
// directory (when set); absolute and relative paths pass through.
func resolveSessionPath(cfg *config.Config, name string) string {
	if cfg.SessionsDir == "" || filepath.IsAbs(name) || strings.ContainsRune(name, os.PathSeparator) {
		return name
	}
	return filepath.Join(cfg.SessionsDir, name)
}
