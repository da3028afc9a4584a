// Command muc_chat is a terminal client for manual testing against a
// running bridge. It authenticates with a token, joins one room and
// relays stdin lines as groupchat messages.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/avolkov/mucbridge/internal/muc"
	"github.com/avolkov/mucbridge/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("muc_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	token := flag.String("token", "", "auth token (see the token subcommand)")
	room := flag.String("room", "", "room JID to join, e.g. fire@conference.coven.lit")
	nick := flag.String("nick", "", "nickname to join with (defaults to the account nick)")
	flag.Parse()

	if *room == "" {
		return errors.New("-room is required")
	}

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(in proto.Inbound) {
		if writeErr := wsjson.Write(ctx, conn, in); writeErr != nil {
			cancel()
			log.Printf("send: %v", writeErr)
		}
	}
	command := func(cmd string, data any) {
		payload, err := json.Marshal(data)
		if err != nil {
			log.Printf("marshal %s: %v", cmd, err)
			return
		}
		send(proto.Inbound{Type: proto.InboundTypeCommand, Command: cmd, Data: payload})
	}

	helloPayload, err := json.Marshal(proto.HelloData{Token: *token, Protocol: proto.ProtocolVersion})
	if err != nil {
		return fmt.Errorf("marshal hello: %w", err)
	}
	send(proto.Inbound{Type: proto.InboundTypeHello, Data: helloPayload})

	command(muc.CmdJoin, muc.JoinRequest{Room: *room, Nick: *nick})

	fmt.Printf("Connected to %s, joining %s\n", *addr, *room)
	fmt.Println("Type messages and press Enter to send. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, *room, command)

	command(muc.CmdLeave, muc.LeaveRequest{Room: *room})
	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var outbound proto.Outbound
		if err := wsjson.Read(ctx, conn, &outbound); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}
		printEvent(outbound)
	}
}

func printEvent(outbound proto.Outbound) {
	raw, err := json.Marshal(outbound.Data)
	if err != nil {
		log.Printf("marshal outbound data: %v", err)
		return
	}

	switch outbound.Event {
	case muc.EventMessage:
		var evt muc.RoomMessage
		if err := json.Unmarshal(raw, &evt); err != nil {
			log.Printf("unmarshal message: %v", err)
			return
		}
		fmt.Printf("[%s] %s: %s\n", evt.Room, evt.Nick, evt.Content)
	case muc.EventRoster:
		var evt muc.RosterUpdate
		if err := json.Unmarshal(raw, &evt); err != nil {
			log.Printf("unmarshal roster: %v", err)
			return
		}
		if evt.Error != nil {
			fmt.Printf("[room %s] presence error for %s: %s\n", evt.Room, evt.Nick, evt.Error.Condition)
			return
		}
		fmt.Printf("[room %s] %s is %s/%s\n", evt.Room, evt.Nick, evt.Affiliation, evt.Role)
	case muc.EventError:
		var evt muc.RoomError
		if err := json.Unmarshal(raw, &evt); err != nil {
			log.Printf("unmarshal room error: %v", err)
			return
		}
		fmt.Printf("[room %s] error: %v\n", evt.Room, evt.Err)
	default:
		fmt.Printf("event=%s data=%s\n", outbound.Event, raw)
	}
}

func writeLoop(ctx context.Context, room string, command func(cmd string, data any)) {
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
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			command(muc.CmdMessage, muc.MessageRequest{Room: room, Content: text})
		}
	}
}
