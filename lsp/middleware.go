package lsp

import (
	"fmt"
	"runtime/debug"

	"bennypowers.dev/slimls/internal/log"
	"bennypowers.dev/slimls/lsp/methods/workspace"
	"bennypowers.dev/slimls/lsp/types"
	"github.com/tliron/glsp"
)

// method wraps an LSP handler that returns (result, error) with middleware.
// Returns the underlying function type so it's compatible with protocol.Handler field types
func method[P, R any](
	s types.ServerContext,
	methodName string,
	handler func(*types.RequestContext, P) (R, error),
) func(*glsp.Context, P) (R, error) {
	return func(ctx *glsp.Context, params P) (result R, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recoverPanic(ctx, methodName, r)
				var zero R
				result = zero
			}
		}()

		log.Debug("%s started", methodName)

		req := types.NewRequestContext(s, ctx)
		result, err = handler(req, params)
		if err != nil {
			return result, fail(ctx, methodName, err)
		}

		logWarnings(ctx, methodName, req)
		log.Debug("%s completed successfully", methodName)
		return result, nil
	}
}

// notify wraps an LSP notification handler that returns only error
func notify[P any](
	s types.ServerContext,
	methodName string,
	handler func(*types.RequestContext, P) error,
) func(*glsp.Context, P) error {
	return func(ctx *glsp.Context, params P) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recoverPanic(ctx, methodName, r)
			}
		}()

		log.Debug("%s started", methodName)

		req := types.NewRequestContext(s, ctx)
		if err = handler(req, params); err != nil {
			return fail(ctx, methodName, err)
		}

		logWarnings(ctx, methodName, req)
		log.Debug("%s completed successfully", methodName)
		return nil
	}
}

// noParam wraps an LSP handler that takes no params (like Shutdown)
func noParam(
	s types.ServerContext,
	methodName string,
	handler func(*types.RequestContext) error,
) func(*glsp.Context) error {
	return func(ctx *glsp.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recoverPanic(ctx, methodName, r)
			}
		}()

		log.Debug("%s started", methodName)

		req := types.NewRequestContext(s, ctx)
		if err = handler(req); err != nil {
			return fail(ctx, methodName, err)
		}

		logWarnings(ctx, methodName, req)
		log.Debug("%s completed successfully", methodName)
		return nil
	}
}

// recoverPanic keeps a handler panic from taking down the server
func recoverPanic(ctx *glsp.Context, methodName string, r any) error {
	log.Error("PANIC in %s: %v\nStack trace:\n%s", methodName, r, debug.Stack())
	if ctx != nil {
		workspace.LogError(ctx, "Internal error in %s: %v", methodName, r)
	}
	return fmt.Errorf("internal error in %s", methodName)
}

// fail reports a handler error to the client and wraps it with the method name
func fail(ctx *glsp.Context, methodName string, err error) error {
	if ctx != nil {
		workspace.LogError(ctx, "%s: %v", methodName, err)
	} else {
		log.Error("%s: %v", methodName, err)
	}
	return fmt.Errorf("%s: %w", methodName, err)
}

func logWarnings(ctx *glsp.Context, methodName string, req *types.RequestContext) {
	for _, warning := range req.Warnings() {
		if ctx != nil {
			workspace.LogWarning(ctx, "%s: %v", methodName, warning)
		} else {
			log.Warn("%s: %v", methodName, warning)
		}
	}
}
