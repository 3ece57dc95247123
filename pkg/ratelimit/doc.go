// Package ratelimit implements per-client fixed-window rate limiting on
// top of any cache backend. Windows are stored under "rate_limit_<client>".
package ratelimit
