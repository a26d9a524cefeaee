// SPDX-FileCopyrightText: (C) 2024 Intel Corporation
// SPDX-License-Identifier: Apache-2.0

package southbound

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Azure/go-amqp"
	"github.com/open-edge-platform/messaging-console-tests/internal/model"
)

const (
	// pause between two messages of an attached sender
	senderPeriod = time.Second

	receiverCredit = 10
)

// ClientAttacher opens AMQP connections to a messaging endpoint so the console has connections and links to show
type ClientAttacher struct {
	url         string
	credentials model.UserCredentials
	tlsConfig   *tls.Config
}

// NewClientAttacher targets host (host:port). Port 5671 or an amqps:// prefix selects TLS.
func NewClientAttacher(host string, credentials model.UserCredentials, insecureSkipVerify bool) *ClientAttacher {
	a := &ClientAttacher{
		url:         amqpURL(host),
		credentials: credentials,
	}
	if strings.HasPrefix(a.url, "amqps://") {
		a.tlsConfig = &tls.Config{InsecureSkipVerify: insecureSkipVerify} //nolint:gosec // test clusters use self signed certificates
	}
	return a
}

func amqpURL(host string) string {
	if strings.HasPrefix(host, "amqp://") || strings.HasPrefix(host, "amqps://") {
		return host
	}
	if strings.HasSuffix(host, ":5672") {
		return "amqp://" + host
	}
	if !strings.Contains(host, ":") {
		host += ":5671"
	}
	return "amqps://" + host
}

func (a *ClientAttacher) dial(ctx context.Context, containerID string) (*amqp.Conn, error) {
	opts := &amqp.ConnOptions{
		ContainerID: containerID,
		TLSConfig:   a.tlsConfig,
		IdleTimeout: time.Minute,
	}
	if a.credentials.Username != "" {
		opts.SASLType = amqp.SASLTypePlain(a.credentials.Username, a.credentials.Password)
	}
	conn, err := amqp.Dial(ctx, a.url, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", a.url, err)
	}
	return conn, nil
}

// Connector is a set of connections, each carrying senders and receivers on one address
type Connector struct {
	Address      string
	containerIDs []string
	conns        []*amqp.Conn
	senders      int
	receivers    int

	cancel context.CancelFunc
	wg     sync.WaitGroup

	sent     atomic.Int64
	received atomic.Int64
}

// AttachConnector opens connections connections, each with senders senders and receivers receivers on address.
// Senders send one message per second and receivers accept everything until Close.
func (a *ClientAttacher) AttachConnector(ctx context.Context, address string, connections int, senders int, receivers int) (*Connector, error) {
	log.Infof("Attaching %d connections with %d senders and %d receivers to %s", connections, senders, receivers, address)
	runCtx, cancel := context.WithCancel(context.Background())
	c := &Connector{
		Address: address,
		cancel:  cancel,
	}
	for i := 0; i < connections; i++ {
		containerID := model.RandomName("console-client")
		conn, err := a.dial(ctx, containerID)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.conns = append(c.conns, conn)
		c.containerIDs = append(c.containerIDs, containerID)

		session, err := conn.NewSession(ctx, nil)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("opening session on %s: %w", containerID, err)
		}
		for j := 0; j < senders; j++ {
			sender, err := session.NewSender(ctx, address, nil)
			if err != nil {
				_ = c.Close()
				return nil, fmt.Errorf("attaching sender to %s: %w", address, err)
			}
			c.senders++
			c.wg.Add(1)
			go c.runSender(runCtx, sender)
		}
		for j := 0; j < receivers; j++ {
			receiver, err := session.NewReceiver(ctx, address, &amqp.ReceiverOptions{Credit: receiverCredit})
			if err != nil {
				_ = c.Close()
				return nil, fmt.Errorf("attaching receiver to %s: %w", address, err)
			}
			c.receivers++
			c.wg.Add(1)
			go c.runReceiver(runCtx, receiver)
		}
	}
	return c, nil
}

func (c *Connector) runSender(ctx context.Context, sender *amqp.Sender) {
	defer c.wg.Done()
	ticker := time.NewTicker(senderPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			msg := amqp.NewMessage([]byte(fmt.Sprintf("msg no. %d", c.sent.Load())))
			if err := sender.Send(ctx, msg, nil); err != nil {
				if ctx.Err() == nil {
					log.Warnf("Sender on %s stopped: %v", c.Address, err)
				}
				return
			}
			c.sent.Add(1)
		}
	}
}

func (c *Connector) runReceiver(ctx context.Context, receiver *amqp.Receiver) {
	defer c.wg.Done()
	for {
		msg, err := receiver.Receive(ctx, nil)
		if err != nil {
			if ctx.Err() == nil {
				log.Warnf("Receiver on %s stopped: %v", c.Address, err)
			}
			return
		}
		if err := receiver.AcceptMessage(ctx, msg); err != nil {
			return
		}
		c.received.Add(1)
	}
}

// ContainerIDs lists the container id of every connection
func (c *Connector) ContainerIDs() []string {
	return c.containerIDs
}

func (c *Connector) Connections() int {
	return len(c.conns)
}

func (c *Connector) Senders() int {
	return c.senders
}

func (c *Connector) Receivers() int {
	return c.receivers
}

// Links is the number of senders plus receivers
func (c *Connector) Links() int {
	return c.senders + c.receivers
}

func (c *Connector) Sent() int64 {
	return c.sent.Load()
}

func (c *Connector) Received() int64 {
	return c.received.Load()
}

// Close stops the senders and receivers and closes every connection
func (c *Connector) Close() error {
	c.cancel()
	var errs []error
	for _, conn := range c.conns {
		if err := conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	c.wg.Wait()
	c.conns = nil
	return errors.Join(errs...)
}

// SendMessages sends every message to address over a fresh connection and returns how many were accepted
func (a *ClientAttacher) SendMessages(ctx context.Context, address string, messages []string) (int, error) {
	conn, err := a.dial(ctx, model.RandomName("console-sender"))
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	session, err := conn.NewSession(ctx, nil)
	if err != nil {
		return 0, err
	}
	sender, err := session.NewSender(ctx, address, nil)
	if err != nil {
		return 0, err
	}
	defer sender.Close(context.Background())

	sent := 0
	for _, body := range messages {
		if err := sender.Send(ctx, amqp.NewMessage([]byte(body)), nil); err != nil {
			return sent, fmt.Errorf("sending to %s after %d messages: %w", address, sent, err)
		}
		sent++
	}
	return sent, nil
}

// ReceiveMessages receives up to count messages from address. When ctx expires the messages received so
// far are returned with the context error.
func (a *ClientAttacher) ReceiveMessages(ctx context.Context, address string, count int) ([]string, error) {
	conn, err := a.dial(ctx, model.RandomName("console-receiver"))
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	session, err := conn.NewSession(ctx, nil)
	if err != nil {
		return nil, err
	}
	receiver, err := session.NewReceiver(ctx, address, &amqp.ReceiverOptions{Credit: receiverCredit})
	if err != nil {
		return nil, err
	}
	defer receiver.Close(context.Background())

	var bodies []string
	for len(bodies) < count {
		msg, err := receiver.Receive(ctx, nil)
		if err != nil {
			return bodies, err
		}
		if err := receiver.AcceptMessage(ctx, msg); err != nil {
			return bodies, err
		}
		bodies = append(bodies, string(msg.GetData()))
	}
	return bodies, nil
}

// GenerateMessages returns count distinct message bodies
func GenerateMessages(count int) []string {
	messages := make([]string, count)
	for i := range messages {
		messages[i] = fmt.Sprintf("testmessage%d", i)
	}
	return messages
}
