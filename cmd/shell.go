package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/color"

	"chat-shell/auth"
	"chat-shell/domain/chat"
	"chat-shell/observability"
	"chat-shell/search"
	"chat-shell/services"
)

// shell is the presentation layer: it turns terminal input into core
// intents and renders the read-only views the core exposes.
type shell struct {
	chat          *services.ChatService
	auth          services.IAuthService
	session       *auth.Session
	index         *search.Index
	monitor       *observability.Monitor
	preferredLang string
	log           *slog.Logger

	// roomOrder maps the displayed room numbers to ids, refreshed on
	// every directory render.
	roomOrder []uuid.UUID
}

func newShell(
	chatService *services.ChatService,
	authService services.IAuthService,
	session *auth.Session,
	index *search.Index,
	monitor *observability.Monitor,
	preferredLang string,
	log *slog.Logger,
) *shell {
	return &shell{
		chat:          chatService,
		auth:          authService,
		session:       session,
		index:         index,
		monitor:       monitor,
		preferredLang: preferredLang,
		log:           log,
	}
}

func (s *shell) loop(ctx context.Context) error {
	color.Cyan.Println("chat-shell ready. Type 'help' for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	prompt := func() {
		if user := s.session.Current(); user != nil {
			fmt.Printf("%s> ", user.Username)
		} else {
			fmt.Print("> ")
		}
	}

	for prompt(); scanner.Scan(); prompt() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		s.dispatch(ctx, line)
	}
	return scanner.Err()
}

func (s *shell) dispatch(ctx context.Context, line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "help":
		printHelp()
	case "register":
		s.register(ctx, args)
	case "login":
		s.login(ctx, args)
	case "logout":
		s.session.End()
		color.Yellow.Println("Signed out")
	case "rooms":
		s.refreshRooms(ctx)
	case "create":
		s.create(args)
	case "join":
		s.membership(args, s.chat.JoinRoom, "Joined")
	case "leave":
		s.membership(args, s.chat.LeaveRoom, "Left")
	case "select":
		s.selectRoom(ctx, args)
	case "messages":
		s.renderTimeline()
	case "send":
		s.send(args)
	case "find":
		s.find(ctx, args)
	case "stats":
		renderStats(s.monitor.Snapshot())
	default:
		color.Red.Printf("Unknown command %q, try 'help'\n", cmd)
	}
}

func (s *shell) register(ctx context.Context, args []string) {
	if len(args) != 2 {
		color.Red.Println("Usage: register <username> <password>")
		return
	}
	identity, token, err := s.auth.Register(args[0], args[1])
	if err != nil {
		color.Red.Printf("Registration failed: %v\n", err)
		return
	}
	s.session.Begin(identity, string(token))
	color.Green.Printf("Welcome, %s\n", identity.Username)
	s.refreshRooms(ctx)
}

func (s *shell) login(ctx context.Context, args []string) {
	if len(args) != 2 {
		color.Red.Println("Usage: login <username> <password>")
		return
	}
	identity, token, err := s.auth.Login(args[0], args[1])
	if err != nil {
		color.Red.Printf("Login failed: %v\n", err)
		return
	}
	s.session.Begin(identity, string(token))
	color.Green.Printf("Welcome back, %s\n", identity.Username)
	s.refreshRooms(ctx)
}

func (s *shell) refreshRooms(ctx context.Context) {
	if err := s.chat.LoadRooms(ctx); err != nil {
		color.Red.Printf("Could not load rooms: %v\n", err)
		return
	}
	s.renderDirectory()
}

func (s *shell) renderDirectory() {
	rooms := s.chat.Rooms()
	s.roomOrder = make([]uuid.UUID, len(rooms))
	for i, room := range rooms {
		s.roomOrder[i] = room.ID
	}
	renderRooms(rooms, s.chat.ActiveRoom())
}

// create parses "create <kind> <name...> [#tag ...]".
func (s *shell) create(args []string) {
	if len(args) < 2 {
		color.Red.Println("Usage: create <direct|group|anonymous|topic> <name> [#tag ...]")
		return
	}
	kind := args[0]
	var nameParts, tags []string
	for _, arg := range args[1:] {
		if strings.HasPrefix(arg, "#") {
			tags = append(tags, strings.TrimPrefix(arg, "#"))
			continue
		}
		nameParts = append(nameParts, arg)
	}

	room, err := s.chat.CreateRoom(chat.CreateRoomCommand{
		Name: strings.Join(nameParts, " "),
		Kind: kind,
		Tags: tags,
	})
	if err != nil {
		color.Red.Printf("Create failed: %v\n", err)
		return
	}
	color.Green.Printf("Room %q created\n", room.Name)
	s.renderDirectory()
}

func (s *shell) membership(args []string, op func(uuid.UUID) error, verb string) {
	id, ok := s.resolveRoom(args)
	if !ok {
		return
	}
	if err := op(id); err != nil {
		color.Red.Printf("%s failed: %v\n", verb, err)
		return
	}
	color.Green.Printf("%s room\n", verb)
	s.renderDirectory()
}

func (s *shell) selectRoom(ctx context.Context, args []string) {
	if len(args) == 1 && args[0] == "none" {
		s.chat.SelectRoom(ctx, uuid.Nil)
		color.Yellow.Println("Selection cleared")
		return
	}
	id, ok := s.resolveRoom(args)
	if !ok {
		return
	}
	s.chat.SelectRoom(ctx, id)
	// The reload is asynchronous; give the simulated network a beat
	// before rendering so the common path shows messages immediately.
	time.Sleep(50 * time.Millisecond)
	s.renderTimeline()
}

func (s *shell) renderTimeline() {
	active := s.chat.ActiveRoom()
	if active == nil {
		color.Yellow.Println("No active room")
		return
	}
	if s.chat.IsLoading() {
		color.Yellow.Println("Loading...")
		return
	}
	renderMessages(active, s.chat.Messages(), s.preferredLang)
}

// send parses "send [--destruct[=seconds]] <text...>".
func (s *shell) send(args []string) {
	active := s.chat.ActiveRoom()
	if active == nil {
		color.Yellow.Println("Select a room first")
		return
	}

	cmd := chat.SendCommand{Room: active.ID}
	var words []string
	for _, arg := range args {
		if arg == "--destruct" {
			cmd.SelfDestruct = true
			continue
		}
		if rest, found := strings.CutPrefix(arg, "--destruct="); found {
			cmd.SelfDestruct = true
			if seconds, err := strconv.Atoi(rest); err == nil && seconds > 0 {
				cmd.SelfDestructAfter = time.Duration(seconds) * time.Second
			}
			continue
		}
		words = append(words, arg)
	}
	cmd.Content = strings.Join(words, " ")

	message, err := s.chat.SendMessage(cmd)
	if err != nil {
		color.Red.Printf("Send failed: %v\n", err)
		return
	}
	if message.SelfDestruct {
		color.Yellow.Printf("Message will self-destruct in %s\n", message.SelfDestructAfter)
	}
	s.renderTimeline()
}

func (s *shell) find(ctx context.Context, args []string) {
	query := search.ParseQuery("/find " + strings.Join(args, " "))
	if query.Terms == "" {
		color.Red.Println("Usage: find <terms> [--room <id>] [--limit <n>]")
		return
	}
	hits, err := s.index.Search(ctx, query)
	if err != nil {
		color.Red.Printf("Search failed: %v\n", err)
		return
	}
	renderHits(hits)
}

// resolveRoom turns a displayed room number into its id.
func (s *shell) resolveRoom(args []string) (uuid.UUID, bool) {
	if len(args) != 1 {
		color.Red.Println("Expected a room number (see 'rooms')")
		return uuid.Nil, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(s.roomOrder) {
		color.Red.Printf("No room numbered %q\n", args[0])
		return uuid.Nil, false
	}
	return s.roomOrder[n-1], true
}

func printHelp() {
	fmt.Println(`Commands:
  register <username> <password>   create an account and sign in
  login <username> <password>      sign in
  logout                           sign out (clears rooms and selection)
  rooms                            fetch and list rooms
  create <kind> <name> [#tag ...]  create a room (direct|group|anonymous|topic)
  join <n> | leave <n>             change membership of room number n
  select <n> | select none         open a room (reloads its messages)
  messages                         show the active room's timeline
  send [--destruct[=secs]] <text>  send a message to the active room
  find <terms> [--room <id>]       full-text search over messages
  stats                            session counters
  quit`)
}
