// Copyright 2025 TrackForge Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cloud provides components for interacting with Google Cloud
// services. This file defines the Pub/Sub listener that feeds the video
// generation workflow. Each upload notification from the inbox bucket is
// handed to the attached command chain; the message is acknowledged only
// when the whole chain succeeds, so a failed generation is redelivered
// under the subscription's retry policy.
package cloud

import (
	"context"
	"log/slog"

	"cloud.google.com/go/pubsub"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/trackforge/go-video-gen/internal/core/cor"
)

// PubSubListener connects one Pub/Sub subscription to a processing command.
// Listeners outlive individual API requests, which is why they live in the
// cloud package rather than with the request handlers.
type PubSubListener struct {
	client       *pubsub.Client
	subscription *pubsub.Subscription
	command      cor.Command
}

// NewPubSubListener creates a listener for the given subscription ID. The
// command may be nil at construction time and attached later with
// SetCommand once the workflow chain is assembled.
func NewPubSubListener(
	pubsubClient *pubsub.Client,
	subscriptionID string,
	command cor.Command,
) (cmd *PubSubListener, err error) {
	sub := pubsubClient.Subscription(subscriptionID)

	cmd = &PubSubListener{
		client:       pubsubClient,
		subscription: sub,
		command:      command,
	}
	return cmd, nil
}

// SetCommand attaches the processing command. A command that is already set
// is never overwritten, which keeps the startup wiring idempotent.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Listen starts receiving messages in a background goroutine. Canceling the
// context stops the receive loop, which is how graceful shutdown reaches
// the listener.
func (m *PubSubListener) Listen(ctx context.Context) {
	slog.Info("listening for upload notifications", "subscription", m.subscription.String())

	go func() {
		tracer := otel.Tracer("upload-listener")

		err := m.subscription.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(ctx, "receive-upload")
			span.SetAttributes(attribute.String("msg", string(msg.Data)))

			// Every message gets a fresh chain context, and with it a fresh
			// job workspace. Close removes the workspace whatever happens in
			// the chain.
			chainCtx := cor.NewBaseContext()
			defer chainCtx.Close()
			chainCtx.SetContext(spanCtx)
			chainCtx.Add(cor.CtxIn, string(msg.Data))

			m.command.Execute(chainCtx)

			if !chainCtx.HasErrors() {
				span.SetStatus(codes.Ok, "success")
				msg.Ack()
			} else {
				span.SetStatus(codes.Error, "failed")
				for name, e := range chainCtx.GetErrors() {
					slog.Error("generation chain failed", "command", name, "error", e)
				}
				// No Ack and no Nack: the message redelivers after the
				// acknowledgement deadline, honoring the retry policy.
			}

			span.End()
		})

		if err != nil {
			slog.Error("listener receive ended", "error", err)
		}
	}()
}
