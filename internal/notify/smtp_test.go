package notify

import (
	"context"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

// fakeSMTP accepts plain SMTP sessions and counts delivered messages.
type fakeSMTP struct {
	ln        net.Listener
	delivered atomic.Int32
}

func startFakeSMTP(t *testing.T) *fakeSMTP {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &fakeSMTP{ln: ln}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go srv.serve(conn)
		}
	}()
	return srv
}

func (f *fakeSMTP) port() int {
	return f.ln.Addr().(*net.TCPAddr).Port
}

func (f *fakeSMTP) serve(conn net.Conn) {
	defer conn.Close()
	tp := textproto.NewConn(conn)
	tp.PrintfLine("220 fake ESMTP")

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		cmd, _, _ := strings.Cut(line, " ")
		switch strings.ToUpper(cmd) {
		case "EHLO", "HELO":
			tp.PrintfLine("250 fake")
		case "DATA":
			tp.PrintfLine("354 end with <CRLF>.<CRLF>")
			if _, err := tp.ReadDotBytes(); err != nil {
				return
			}
			f.delivered.Add(1)
			tp.PrintfLine("250 queued")
		case "QUIT":
			tp.PrintfLine("221 bye")
			return
		default:
			tp.PrintfLine("250 ok")
		}
	}
}

func newPlainSender(t *testing.T, port int) *SMTPSender {
	t.Helper()
	client, err := mail.NewClient("127.0.0.1",
		mail.WithPort(port),
		mail.WithTLSPolicy(mail.NoTLS),
		mail.WithTimeout(5*time.Second),
	)
	require.NoError(t, err)
	return &SMTPSender{client: client}
}

func plainMessage(t *testing.T, n int) *mail.Msg {
	t.Helper()
	msg := mail.NewMsg()
	require.NoError(t, msg.From("management@scivvas.com"))
	require.NoError(t, msg.To(fmt.Sprintf("buyer%d@example.com", n)))
	msg.Subject("Your BAN KAFILA ticket")
	msg.SetBodyString(mail.TypeTextPlain, "see you at the gate")
	return msg
}

func TestSMTPSenderSend(t *testing.T) {
	srv := startFakeSMTP(t)
	sender := newPlainSender(t, srv.port())

	require.NoError(t, sender.Send(context.Background(), plainMessage(t, 0)))
	assert.Equal(t, int32(1), srv.delivered.Load())
	assert.NoError(t, sender.Close())
}

func TestSMTPSenderConcurrentSends(t *testing.T) {
	srv := startFakeSMTP(t)
	sender := newPlainSender(t, srv.port())

	const buyers = 20
	msgs := make([]*mail.Msg, buyers)
	for i := range msgs {
		msgs[i] = plainMessage(t, i)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(msg *mail.Msg) {
			defer wg.Done()
			errs <- sender.Send(ctx, msg)
		}(msgs[i])
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(buyers), srv.delivered.Load())
}
