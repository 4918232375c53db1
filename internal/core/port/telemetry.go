package port

type Recorder interface {
	// Record buffers a telemetry event.
	Record(event string, fields map[string]any)
	// Flush drains all buffered events. Called on shutdown.
	Flush()
}
