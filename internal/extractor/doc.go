// Package extractor runs the external audio extraction tool (yt-dlp).
//
// It supports:
//   - Launching the tool with a fixed argument template so that it writes an
//     mp3 stream for a single video to its standard output
//   - Tracking live producer processes so they can be terminated on shutdown
//   - Terminating a producer's whole process group (the tool forks ffmpeg)
//     with a SIGTERM grace period before SIGKILL
//   - Resolving free-text title and artist queries to a video identifier
//
// A spawn failure is reported as a *SpawnError, distinct from an *ExitError
// returned when a process that started successfully later exits non-zero.
//
// The tool must be installed and available in the system PATH, or configured
// with YTDLP_PATH.
package extractor
