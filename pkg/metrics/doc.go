/*
Package metrics provides Prometheus instrumentation and HTTP health/readiness
endpoints for llrbkv.

Metrics are recorded at the call sites that own the relevant state (the
block store increments block/byte counters on every Write, observes commit
and lock-wait durations on every CommitRootAddress/Lock) rather than being
polled from a central collector: there is no background goroutine here, only
counters, histograms, and a gauge that get pushed to directly.

# Metrics

  - llrbkv_blocks_written_total, llrbkv_bytes_appended_total: block store
    write volume.
  - llrbkv_commits_total, llrbkv_commit_duration_seconds: root-swap commit
    rate and latency.
  - llrbkv_lock_wait_duration_seconds: time blocked acquiring the advisory
    file lock.
  - llrbkv_tree_depth: depth of the most recently committed tree, set by the
    tree's Commit after the root is published, since computing it requires
    a walk.

Handler exposes these on /metrics in the Prometheus text format.

# Health and readiness

RegisterComponent/UpdateComponent track named components (the CLI's
serve-metrics command registers "store" once the database opens).
HealthHandler, ReadyHandler, and LivenessHandler back /health, /ready, and
/live respectively, in the same style as most container-orchestrated Go
services: liveness never fails once the process is up, readiness fails
until every registered component reports healthy.
*/
package metrics
