// Package health serves liveness and readiness probes.
//
// Readiness runs every check concurrently under one deadline and reports
// each outcome with its duration:
//
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	    "redis":    redis.Healthcheck(client),
//	}))
//
// Probes answer in plain text, or JSON when the client sends
// Accept: application/json or ?format=json.
package health
