package main

import (
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

// https://github.com/gorilla/websocket/blob/main/examples/chat/client.go
var (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 20 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Watchers only send control frames.
	maxMessageSize = 512

	// Events buffered per watcher before it is considered too slow.
	watcherBuffer = 256
)

// Client is a websocket watcher of run progress.
type Client struct {
	connection *websocket.Conn
	manager    *Manager
	events     chan []byte
}

type ClientList map[*Client]bool

func NewClient(conn *websocket.Conn, m *Manager) *Client {
	return &Client{
		connection: conn,
		manager:    m,
		events:     make(chan []byte, watcherBuffer),
	}
}

func (client *Client) WriteMsgs() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.manager.removeClient(client)
	}()

	for {
		select {
		case json, ok := <-client.events:
			client.connection.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// manager dropped the client
				client.connection.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := client.connection.WriteMessage(websocket.TextMessage, json); err != nil {
				glog.Warningf("could not write message to watcher: %v\n", err)
				return
			}
		case <-ticker.C:
			client.connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				glog.Warningf("could not ping watcher: %v\n", err)
				return
			}
		}
	}
}

// ReadMsgs only keeps the read deadline alive; watchers have nothing to say.
func (client *Client) ReadMsgs() {
	defer client.manager.removeClient(client)

	client.connection.SetReadLimit(int64(maxMessageSize))
	client.connection.SetReadDeadline(time.Now().Add(pongWait))
	client.connection.SetPongHandler(func(string) error { client.connection.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := client.connection.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				glog.Warningf("error reading from watcher: %v\n", err)
			}
			break
		}
	}
}
