/*
Package config loads engine settings from YAML, JSON or a plain map.

Every key is optional; missing keys and values of the wrong type keep the
default. Durations accept Go duration strings ("15ms") or bare numbers,
read as milliseconds.

	minimum_immediate: 100
	frame_budget: 15ms
	budget_check_interval: 100
	slot_warning_threshold: 100
	dirty_check_delay: 120
	metrics_enabled: true
	tracing_enabled: false
	log_level: debug

Load picks the decoder from the file extension:

	settings, err := config.Load("exprbind.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	engine, err := exprbind.NewFromSettings(settings)
*/
package config
