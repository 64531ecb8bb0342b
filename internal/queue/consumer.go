// Package queue contains the background consumer that listens to the change
// queue and writes one audit line per event to <dir>/changes.log.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const auditLogFile = "changes.log"

// AuditConsumer drains the change queue into an append-only log file.
type AuditConsumer struct {
	URL      string
	Queue    string
	Dir      string
	Prefetch int
	Log      *zap.Logger

	mu sync.Mutex // serialises writes to the log file
}

// Run connects to the broker and consumes until ctx is cancelled. Broker
// failures are logged and retried with exponential backoff capped at 30s.
// Run returns ctx.Err() once the context is done.
func (a *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(a.URL)
		if err != nil {
			a.Log.Warn("audit consumer: dial failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if err := sleep(ctx, backoff); err != nil {
				return err
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = a.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.Log.Warn("audit consumer: consume loop ended, reconnecting", zap.Error(err))
		if err := sleep(ctx, 2*time.Second); err != nil {
			return err
		}
	}
}

func (a *AuditConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(a.Prefetch, 0, false); err != nil {
		a.Log.Warn("audit consumer: set QoS failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(a.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, a.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := a.HandleMessage(d.Body); err != nil {
				a.Log.Error("audit consumer: handle message failed", zap.Error(err), zap.String("message_id", d.MessageId))
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// HandleMessage decodes one RowChanged payload and appends it to the audit log.
func (a *AuditConsumer) HandleMessage(body []byte) error {
	var ev RowChanged
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Entity == "" || ev.Operation == "" {
		return errors.New("event without entity or operation")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", a.Dir, err)
	}
	f, err := os.OpenFile(filepath.Join(a.Dir, auditLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(FormatAuditLine(ev)); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatAuditLine renders ev as a single newline-terminated line. Fields are
// printed in column-name order.
func FormatAuditLine(ev RowChanged) string {
	names := make([]string, 0, len(ev.Fields))
	for k := range ev.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	pairs := make([]string, len(names))
	for i, k := range names {
		pairs[i] = fmt.Sprintf("%s=%v", k, ev.Fields[k])
	}
	key := ev.Key
	if key == "" {
		key = "-"
	}
	return fmt.Sprintf("[%s] %s %s | key=%s | affected=%d | id=%s | fields={%s}\n",
		ev.OccurredAt.Format(time.RFC3339), ev.Entity, ev.Operation, key, ev.Affected, ev.ID, strings.Join(pairs, ", "))
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
