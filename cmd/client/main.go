package main

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/SergioBarbosa7/socket-chat/domain"
)

type clientConfig struct {
	Host string `env:"HOST,default=localhost"`
	Port int    `env:"PORT,default=8080"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Client terminated with error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var config clientConfig
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if len(os.Args) < 2 {
		return fmt.Errorf("usage: %s <username>", os.Args[0])
	}
	username := os.Args[1]

	u := url.URL{Scheme: "ws", Host: fmt.Sprintf("%s:%d", config.Host, config.Port), Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("cannot reach server at %s: %w", u.String(), err)
	}
	defer conn.Close()

	login := domain.NewMessage(domain.TypeLogin, username, domain.ServerUser, username)
	if err := conn.WriteJSON(login); err != nil {
		return err
	}

	done := make(chan struct{})
	go receiveLoop(conn, done)

	color.Cyan.Printf("Connected as %s. Type /help for commands.\n", username)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-done:
			return fmt.Errorf("server closed the connection")
		default:
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		message, quit := parseCommand(username, line)
		if quit {
			_ = conn.WriteJSON(domain.NewMessage(domain.TypeDisconnect, username, domain.ServerUser, ""))
			return nil
		}
		if message == nil {
			continue
		}
		if err := conn.WriteJSON(message); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// parseCommand turns one input line into an outbound frame. A nil message
// with quit=false means the line was handled locally (help, errors).
func parseCommand(username, line string) (*domain.Message, bool) {
	parts := strings.SplitN(line, " ", 3)
	switch parts[0] {
	case "/help", "/h":
		printHelp()

	case "/msg":
		if len(parts) < 3 {
			color.Red.Println("usage: /msg <user> <message>")
			return nil, false
		}
		m := domain.NewMessage(domain.TypePrivateMessage, username, parts[1], parts[2])
		return &m, false

	case "/group":
		if len(parts) < 3 {
			color.Red.Println("usage: /group <group> <message>")
			return nil, false
		}
		m := domain.NewMessage(domain.TypeGroupMessage, username, strings.TrimPrefix(parts[1], "#"), parts[2])
		return &m, false

	case "/create":
		if len(parts) < 2 {
			color.Red.Println("usage: /create <group>")
			return nil, false
		}
		m := domain.NewMessage(domain.TypeCreateGroup, username, domain.ServerUser, parts[1])
		return &m, false

	case "/join":
		if len(parts) < 2 {
			color.Red.Println("usage: /join <group>")
			return nil, false
		}
		m := domain.NewMessage(domain.TypeJoinGroup, username, domain.ServerUser, parts[1])
		return &m, false

	case "/leave":
		if len(parts) < 2 {
			color.Red.Println("usage: /leave <group>")
			return nil, false
		}
		m := domain.NewMessage(domain.TypeLeaveGroup, username, domain.ServerUser, parts[1])
		return &m, false

	case "/file":
		if len(parts) < 3 {
			color.Red.Println("usage: /file <user|#group> <path>")
			return nil, false
		}
		return buildFileMessage(username, parts[1], parts[2]), false

	case "/users":
		m := domain.NewMessage(domain.TypeRequestUsersList, username, domain.ServerUser, "")
		return &m, false

	case "/groups":
		m := domain.NewMessage(domain.TypeRequestGroupsList, username, domain.ServerUser, "")
		return &m, false

	case "/quit", "/exit":
		return nil, true

	default:
		color.Red.Println("Unknown command. Type /help to see available commands.")
	}
	return nil, false
}

func buildFileMessage(username, target, path string) *domain.Message {
	data, err := os.ReadFile(path)
	if err != nil {
		color.Red.Printf("cannot read %s: %v\n", path, err)
		return nil
	}
	messageType := domain.TypeFileMessage
	if strings.HasPrefix(target, "#") {
		messageType = domain.TypeFileGroup
		target = strings.TrimPrefix(target, "#")
	}
	m := domain.NewFileMessage(messageType, username, target, filepath.Base(path), data)
	return &m
}

func receiveLoop(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		var message domain.Message
		if err := conn.ReadJSON(&message); err != nil {
			return
		}
		render(message)
	}
}

func render(message domain.Message) {
	switch message.Type {
	case domain.TypeLoginSuccess, domain.TypeGroupCreated, domain.TypeGroupJoined, domain.TypeGroupLeft, domain.TypeFileReceived:
		color.Green.Printf("[%s] %s\n", message.Type, message.Content)

	case domain.TypeLoginFailed, domain.TypeGroupCreateFailed, domain.TypeGroupJoinFailed,
		domain.TypeGroupLeaveFailed, domain.TypeErrorMessage:
		color.Red.Printf("[%s] %s\n", message.Type, message.Content)

	case domain.TypeUsersList, domain.TypeGroupsList:
		renderListing(message)

	case domain.TypePrivateMessage, domain.TypeGroupMessage:
		color.Yellow.Printf("%s: ", message.From)
		fmt.Println(message.Content)

	case domain.TypeFileMessage, domain.TypeFileGroup:
		saveAttachment(message)

	case domain.TypeHeartbeat:
		// Keep-alive only, nothing to show.

	default:
		fmt.Printf("[%s] %s\n", message.Type, message.Content)
	}
}

// renderListing draws the server's listing replies as a table, one line per
// entry.
func renderListing(message domain.Message) {
	lines := strings.Split(strings.TrimSpace(message.Content), "\n")
	if len(lines) < 2 {
		color.Cyan.Println(message.Content)
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{lines[0]})
	for _, line := range lines[1:] {
		table.Append([]string{line})
	}
	table.Render()
}

func saveAttachment(message domain.Message) {
	name := filepath.Base(message.FileName)
	if name == "" || name == "." {
		color.Red.Println("received attachment with no usable name, skipping")
		return
	}
	if err := os.WriteFile(name, message.FileData, 0o644); err != nil {
		color.Red.Printf("cannot save %s: %v\n", name, err)
		return
	}
	color.Green.Printf("received file from %s, saved as %s (%d bytes)\n", message.From, name, len(message.FileData))
}

func printHelp() {
	fmt.Println("/msg <user> <message>     - send a private message")
	fmt.Println("/group <group> <message>  - send a message to a group")
	fmt.Println("/create <group>           - create a new group")
	fmt.Println("/join <group>             - join a group")
	fmt.Println("/leave <group>            - leave a group")
	fmt.Println("/file <user|#group> <path> - send a file")
	fmt.Println("/users                    - list known users")
	fmt.Println("/groups                   - list available groups")
	fmt.Println("/quit                     - leave the chat")
}
