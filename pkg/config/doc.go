/*
Package config loads and validates Quill's YAML configuration.

A config file tunes logging, the metrics endpoint, the debounce interval,
the indexing queue, the tokenizer and the normalizer chain. Every field is
optional; absent fields keep the defaults from Default.

Example:

	log_level: info
	log_json: true
	metrics_addr: 127.0.0.1:2112
	debounce: 1s
	queue_size: 1024
	tokenizer:
	  kind: regex
	  pattern: "[^\\w-]+"
	normalizers:
	  unicode: nfc
	  lowercase: true
	  stop_words: [a, the, and, or, not]
*/
package config
