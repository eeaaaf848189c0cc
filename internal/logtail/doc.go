// Package logtail keeps bounded tails of log text.
//
// Buffer is an in-memory ring of the most recent lines streamed from docker
// subprocesses. Output arrives in arbitrary chunks, so Append splits on
// newlines, drops blank lines and trims trailing whitespace before storing.
// Memory use is O(limit) regardless of how chatty the container is.
//
// Read extracts the last N lines of a file in one sequential pass using the
// same ring. The UI uses it to show the launcher's diagnostic log file.
//
//	buf := logtail.NewBuffer(500)
//	buf.Append("Pulling from superplanehq/superplane-demo\nDigest: sha256:...\n")
//	lines := buf.Lines()
//
//	tail, err := logtail.Read(cfg.LogPath(), 200)
package logtail
