/*
Package metrics provides Prometheus metrics for Quill's indexing pipeline.

All collectors are package-level variables registered in init, following the
convention of one metric family per observable event: files indexed and
purged, tokens read, distinct terms held, queue depth, watched roots, and
operation latencies for queries and per-file indexing.

# Usage

Recording metrics:

	metrics.FilesIndexed.Inc()
	metrics.QueueDepth.Set(float64(len(queue)))

Timing operations:

	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.QueryDuration)

Exposing the endpoint:

	http.Handle("/metrics", metrics.Handler())

# Metric Reference

	quill_files_indexed_total        counter    files fully indexed
	quill_files_purged_total         counter    files purged from the index
	quill_tokens_indexed_total       counter    tokens read while indexing
	quill_index_terms                gauge      distinct terms currently held
	quill_indexing_queue_depth       gauge      queued indexing actions
	quill_watched_roots              gauge      roots under live watch
	quill_watcher_events_total       counter    debounced events by kind
	quill_query_duration_seconds     histogram  query latency
	quill_index_file_duration_seconds histogram per-file indexing latency
*/
package metrics
