package mailer

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/couchcryptid/weather-notify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// closedPort reserves a port, closes it, and returns it so a dial attempt
// is refused deterministically.
func closedPort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestRelay_Dispatch_UnreachableRelayNeverPanicsOrErrors(t *testing.T) {
	relay := NewRelay("127.0.0.1", closedPort(t), "sender@example.com", "secret", "", time.Second, discardLogger())

	outcome := relay.Dispatch(context.Background(), domain.Notification{
		RecipientEmail: "user@example.com",
		Report:         sampleReport(),
	})

	assert.False(t, outcome.Delivered)
	assert.NotEmpty(t, outcome.ErrorDetail)
	assert.Contains(t, outcome.ErrorDetail, ErrDelivery.Error())
}

func TestRelay_Dispatch_SingleAttempt(t *testing.T) {
	// Count connection attempts with a listener that refuses to speak TLS;
	// exactly one attempt must be made per invocation.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	attempts := make(chan struct{}, 8)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			attempts <- struct{}{}
			conn.Close()
		}
	}()

	relay := NewRelay("127.0.0.1", ln.Addr().(*net.TCPAddr).Port, "sender@example.com", "secret", "", time.Second, discardLogger())
	outcome := relay.Dispatch(context.Background(), domain.Notification{
		RecipientEmail: "user@example.com",
		Report:         sampleReport(),
	})

	assert.False(t, outcome.Delivered)
	assert.Len(t, drain(attempts), 1)
}

func drain(ch chan struct{}) []struct{} {
	time.Sleep(50 * time.Millisecond)
	var out []struct{}
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}

func TestNewRelay_FromDefaultsToUsername(t *testing.T) {
	relay := NewRelay("smtp.example.com", 465, "sender@example.com", "secret", "", time.Second, discardLogger())
	assert.Equal(t, "sender@example.com", relay.from)

	relay = NewRelay("smtp.example.com", 465, "sender@example.com", "secret", "noreply@example.com", time.Second, discardLogger())
	assert.Equal(t, "noreply@example.com", relay.from)
}

func TestRelay_Name(t *testing.T) {
	relay := NewRelay("smtp.example.com", 465, "u", "p", "", time.Second, discardLogger())
	assert.Equal(t, "relay", relay.Name())
}
