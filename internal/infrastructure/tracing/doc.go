/*
Package tracing provides lightweight request tracing.

# Overview

Every HTTP request gets a span. Trace and span IDs are ULIDs from
internal/shared/id and travel in the X-Trace-ID and X-Span-ID headers, so a
caller that sends its own trace ID sees it continued in the response and in
the logs. Finished spans are buffered and logged by a background collector.

# Usage

	tracer := tracing.New("docshelf", logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
