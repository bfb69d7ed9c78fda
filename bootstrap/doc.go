// Package bootstrap runs an rxkit binary through a uniform lifecycle:
// start components, run configure callbacks and hooks, then either block
// until a shutdown signal (Run) or execute a finite task (RunTask), and
// finally stop everything in reverse order.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(loop)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return stream.ForEach(ctx, s, print)
//	})
package bootstrap
