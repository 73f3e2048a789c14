// Copyright (c) 2026 John Earle
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package queue publishes delivered-incident notifications to Redis as
// Celery-compatible tasks. This is the bridge between the Go service and the
// Python case-management workers.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// taskName is the Celery task the case-management workers register.
const taskName = "drs.tasks.incident_created"

// Publisher sends incident notifications to Redis in Celery task format.
type Publisher struct {
	rdb       *redis.Client
	queueName string
}

// NewPublisher creates a new Redis publisher targeting the specified queue.
func NewPublisher(rdb *redis.Client, queueName string) *Publisher {
	return &Publisher{
		rdb:       rdb,
		queueName: queueName,
	}
}

// incidentNotice is the task argument the workers consume.
type incidentNotice struct {
	AccountNum  string         `json:"account_num"`
	IncidentID  int            `json:"incident_id"`
	Ack         map[string]any `json:"ack"`
	DeliveredAt string         `json:"delivered_at"`
}

// celeryTask represents a Celery-compatible task message.
// Celery reads tasks from Redis using this exact JSON structure.
type celeryTask struct {
	ID      string        `json:"id"`
	Task    string        `json:"task"`
	Args    []interface{} `json:"args"`
	Kwargs  interface{}   `json:"kwargs"`
	Retries int           `json:"retries"`
	ETA     *string       `json:"eta"`
}

// celeryMessage wraps a task for Redis transport.
type celeryMessage struct {
	Body            string                 `json:"body"`
	ContentEncoding string                 `json:"content-encoding"`
	ContentType     string                 `json:"content-type"`
	Headers         map[string]interface{} `json:"headers"`
	Properties      map[string]interface{} `json:"properties"`
}

// PublishIncidentProcessed serialises a delivered-incident notice and
// publishes it as a Celery task to Redis. The Python workers pick it up via
// `celery worker -Q incidents`.
func (p *Publisher) PublishIncidentProcessed(ctx context.Context, accountNum string, incidentID int, ack map[string]any) error {
	notice := incidentNotice{
		AccountNum:  accountNum,
		IncidentID:  incidentID,
		Ack:         ack,
		DeliveredAt: time.Now().UTC().Format(time.RFC3339),
	}
	noticeJSON, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("marshal incident notice: %w", err)
	}

	taskID := uuid.New().String()

	// Build Celery task body
	task := celeryTask{
		ID:     taskID,
		Task:   taskName,
		Args:   []interface{}{string(noticeJSON)},
		Kwargs: map[string]interface{}{},
	}

	taskBody, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal celery task: %w", err)
	}

	// Wrap in Celery message envelope
	msg := celeryMessage{
		Body:            string(taskBody),
		ContentEncoding: "utf-8",
		ContentType:     "application/json",
		Headers: map[string]interface{}{
			"lang":    "py",
			"task":    taskName,
			"id":      taskID,
			"retries": 0,
		},
		Properties: map[string]interface{}{
			"correlation_id": taskID,
			"delivery_mode":  2,
			"delivery_tag":   taskID,
			"body_encoding":  "utf-8",
			"exchange":       p.queueName,
			"routing_key":    p.queueName,
			"delivery_info": map[string]string{
				"exchange":    p.queueName,
				"routing_key": p.queueName,
			},
		},
	}

	msgJSON, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal celery message: %w", err)
	}

	// Push to Redis — Celery uses LPUSH to the queue
	if err := p.rdb.LPush(ctx, p.queueName, string(msgJSON)).Err(); err != nil {
		return fmt.Errorf("redis LPUSH: %w", err)
	}

	slog.Info("published incident notice to queue",
		"task_id", taskID,
		"account", accountNum,
		"incident_id", incidentID,
		"queue", p.queueName,
	)

	return nil
}

// Ping checks the Redis connection.
func (p *Publisher) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.rdb.Ping(ctx).Err()
}
