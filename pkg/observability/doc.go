/*
Package observability provides tools for monitoring lesson navigation.

It turns the controller's lifecycle hooks into structured log lines and
Prometheus metrics. Combine them with domain.MergeHooks:

	metrics, _ := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := domain.MergeHooks(observability.LoggingHooks(logger), metrics.Hooks())
	ctrl, _ := stepwise.New(model, root, stepwise.WithLifecycleHooks(hooks))
*/
package observability
