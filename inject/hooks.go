/**
 * Copyright (c) 2019, The GraphQL Modules Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package inject

import (
	"context"
)

// Names of lifecycle hooks understood by DispatchHook. A provider instance participates in a hook
// by implementing the matching interface below.
const (
	HookOnRequest    = "OnRequest"
	HookOnConnect    = "OnConnect"
	HookOnDisconnect = "OnDisconnect"
	HookOnResponse   = "OnResponse"
)

// OnRequestHook is run when a session starts building its per-request state.
type OnRequestHook interface {
	OnRequest(ctx context.Context, session interface{}) error
}

// OnConnectHook is run when a subscription transport connects.
type OnConnectHook interface {
	OnConnect(ctx context.Context, session interface{}) error
}

// OnDisconnectHook is run when a subscription transport disconnects.
type OnDisconnectHook interface {
	OnDisconnect(ctx context.Context, session interface{}) error
}

// OnResponseHook is run after a response for the session has been produced.
type OnResponseHook interface {
	OnResponse(ctx context.Context, session interface{}) error
}

// hookInvokers maps a hook name to a function that type-asserts an instance against the hook
// interface and invokes it. The bool result reports whether the instance implements the hook.
var hookInvokers = map[string]func(instance interface{}, ctx context.Context, session interface{}) (bool, error){
	HookOnRequest: func(instance interface{}, ctx context.Context, session interface{}) (bool, error) {
		if hook, ok := instance.(OnRequestHook); ok {
			return true, hook.OnRequest(ctx, session)
		}
		return false, nil
	},

	HookOnConnect: func(instance interface{}, ctx context.Context, session interface{}) (bool, error) {
		if hook, ok := instance.(OnConnectHook); ok {
			return true, hook.OnConnect(ctx, session)
		}
		return false, nil
	},

	HookOnDisconnect: func(instance interface{}, ctx context.Context, session interface{}) (bool, error) {
		if hook, ok := instance.(OnDisconnectHook); ok {
			return true, hook.OnDisconnect(ctx, session)
		}
		return false, nil
	},

	HookOnResponse: func(instance interface{}, ctx context.Context, session interface{}) (bool, error) {
		if hook, ok := instance.(OnResponseHook); ok {
			return true, hook.OnResponse(ctx, session)
		}
		return false, nil
	},
}
