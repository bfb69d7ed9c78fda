// Package sse serves rxkit streams to HTTP clients as Server-Sent Events.
//
// Each request gets its own subscription. Values are written as "next"
// events with a JSON payload, followed by exactly one "complete" or
// "error" event. A client disconnect cancels the subscription.
//
// # Usage
//
//	router.GET("/crew", func(c *gin.Context) {
//		sse.ServeStream(c.Writer, c.Request, catalog.DelayedCrewStream(),
//			sse.WithRuntime(rt))
//	})
package sse
