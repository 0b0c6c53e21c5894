package metrics

const (
	// process health
	MetricUp = "router_keepalive_up"

	// last tick
	MetricLastRunSuccess  = "router_keepalive_last_run_success"
	MetricLastRunTs       = "router_keepalive_last_run_timestamp_seconds"
	MetricLastRunDuration = "router_keepalive_last_run_duration_seconds"
	MetricLastRunRetries  = "router_keepalive_last_run_retries"

	// totals since start
	MetricRunsTotal       = "router_keepalive_runs_total"
	MetricSuccessTotal    = "router_keepalive_success_total"
	MetricRejectedTotal   = "router_keepalive_auth_rejected_total"
	MetricUnexpectedTotal = "router_keepalive_unexpected_response_total"
	MetricExhaustedTotal  = "router_keepalive_retries_exhausted_total"
	MetricRetriesTotal    = "router_keepalive_retries_total"
	MetricFollowUpFailed  = "router_keepalive_followup_failures_total"
)
