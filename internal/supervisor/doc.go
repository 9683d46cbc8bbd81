// Betty Organic - Back-Office Order Notifications and Sales Reports
// Copyright 2026 Yosef Ali
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Yosef-Ali/betty-organic-sub002

/*
Package supervisor provides process supervision using suture v4.

All long-running services run under a hierarchical supervisor tree with
automatic restart, exponential backoff, and graceful shutdown:

	RootSupervisor ("betty-organic")
	├── DataSupervisor ("data-layer")
	│   └── report.Aggregator
	├── MessagingSupervisor ("messaging-layer")
	│   ├── websocket.Hub
	│   └── reconcile.Notifier (feed consumer + snapshot poll)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The layering isolates failures: a crash in the reconciliation loop does
not drop websocket connections, and a report aggregation panic never
takes the HTTP API down. Each layer restarts independently with the
configured failure threshold and backoff.

Any value with a Serve(ctx context.Context) error method and a String()
identifier can be supervised; the hub, notifier, and aggregator
implement suture.Service directly, and HTTPServerService adapts
*http.Server's blocking ListenAndServe to the same shape.

Supervisor lifecycle events are logged through sutureslog into the
shared zerolog-backed slog handler.
*/
package supervisor
