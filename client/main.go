// Terminal client for the Nova Chat backend. Reads lines from stdin and
// sends them to the room; prints every broadcast event. "/delete <id>"
// requests a deletion.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/novachat/nova-chat/pkg/model"
)

type outboundFrame struct {
	Type      string `json:"type"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Message   string `json:"message,omitempty"`
	ID        int64  `json:"id,omitempty"`
}

func main() {
	serverAddr := flag.String("addr", "localhost:5000", "server address")
	username := flag.String("user", "anon", "username")
	avatarURL := flag.String("avatar", "", "avatar url")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *serverAddr, Path: "/ws"}
	log.Printf("connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer c.Close()

	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			_, payload, err := c.ReadMessage()
			if err != nil {
				log.Println("read:", err)
				return
			}

			var evt model.Event
			if err := json.Unmarshal(payload, &evt); err != nil {
				log.Printf("received raw: %s", payload)
				continue
			}

			switch evt.Type {
			case model.EventNewMessage:
				fmt.Printf("\r[%d] %s: %s\n> ", evt.ID, evt.Username, evt.Message)
			case model.EventMessageDeleted:
				fmt.Printf("\rmessage %d deleted\n> ", evt.DeletedID)
			default:
				fmt.Printf("\r%s\n> ", payload)
			}
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	input := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print("> ")
		for scanner.Scan() {
			input <- scanner.Text()
		}
		close(input)
	}()

	for {
		select {
		case <-done:
			return
		case line, ok := <-input:
			if !ok {
				return
			}
			frame := outboundFrame{
				Type:      "sendMessage",
				Username:  *username,
				AvatarURL: *avatarURL,
				Message:   line,
			}
			if rest, found := strings.CutPrefix(line, "/delete "); found {
				id, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
				if err != nil {
					fmt.Print("usage: /delete <id>\n> ")
					continue
				}
				frame = outboundFrame{Type: "deleteMessage", ID: id}
			}
			if err := c.WriteJSON(frame); err != nil {
				log.Println("write:", err)
				return
			}
			fmt.Print("> ")
		case <-interrupt:
			log.Println("interrupt")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("write close:", err)
				return
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}
